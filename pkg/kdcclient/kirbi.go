package kdcclient

import (
	"fmt"

	"github.com/kdcflow/krbtgs/pkg/asn1krb5"
	"github.com/kdcflow/krbtgs/pkg/principal"
	"github.com/kdcflow/krbtgs/pkg/tgs"
	"github.com/kdcflow/krbtgs/pkg/ticket"
)

// CredentialFromKirbi bridges a loaded .kirbi (typically an initial TGT
// obtained out-of-band via the AS-exchange, out of scope for this engine)
// into a tgs.Credential the orchestrator can use as asTgt.
func CredentialFromKirbi(k *ticket.Kirbi) (tgs.Credential, error) {
	tkt := k.Ticket()
	if tkt == nil {
		return tgs.Credential{}, fmt.Errorf("kirbi has no ticket")
	}
	key := k.SessionKey()
	if key == nil {
		return tgs.Credential{}, fmt.Errorf("kirbi has no session key")
	}
	ticketBytes, err := tkt.Marshal()
	if err != nil {
		return tgs.Credential{}, err
	}

	var client, server principal.Name
	var flags tgs.Flags
	if k.CredInfo != nil && len(k.CredInfo.TicketInfo) > 0 {
		info := k.CredInfo.TicketInfo[0]
		client = fromPrincipalName(info.PRealm, info.PName)
		server = fromPrincipalName(info.SRealm, info.SName)
		flags = flagsFromBitString(info.Flags)
	} else {
		server = fromPrincipalName(tkt.Realm, tkt.SName)
	}

	return tgs.Credential{
		Client:      client,
		Server:      server,
		SessionKey:  key.KeyValue,
		EType:       key.KeyType,
		Flags:       flags,
		TicketBytes: ticketBytes,
		Ticket: tgs.Ticket{
			Realm:   principal.Realm(tkt.Realm),
			SName:   server,
			Payload: ticketBytes,
		},
	}, nil
}

// KirbiFromCredential packages a resolved tgs.Credential as a .kirbi for
// on-disk storage, the way a real client persists the service ticket it
// just obtained.
func KirbiFromCredential(cred tgs.Credential) (*ticket.Kirbi, error) {
	tkt, _, err := asn1krb5.UnmarshalTicket(cred.TicketBytes)
	if err != nil {
		return nil, err
	}

	credInfo := &asn1krb5.EncKRBCredPart{
		TicketInfo: []asn1krb5.KRBCredInfo{{
			Key:       asn1krb5.EncryptionKey{KeyType: cred.EType, KeyValue: cred.SessionKey},
			PRealm:    string(cred.Client.Realm),
			PName:     toPrincipalName(cred.Client),
			StartTime: cred.StartTime,
			EndTime:   cred.EndTime,
			SRealm:    string(cred.Server.Realm),
			SName:     toPrincipalName(cred.Server),
		}},
	}

	return &ticket.Kirbi{
		Cred: &asn1krb5.KRBCred{
			PVNO:    asn1krb5.PVNO,
			MsgType: asn1krb5.MsgTypeKRBCred,
			Tickets: []asn1krb5.Ticket{*tkt},
		},
		CredInfo: credInfo,
	}, nil
}
