package kdcclient

import (
	"context"
	"encoding/asn1"
	"fmt"
	"time"

	"github.com/kdcflow/krbtgs/internal/network"
	"github.com/kdcflow/krbtgs/pkg/asn1krb5"
	"github.com/kdcflow/krbtgs/pkg/crypto"
	"github.com/kdcflow/krbtgs/pkg/principal"
	"github.com/kdcflow/krbtgs/pkg/tgs"
)

// Client sends TGS-REQs for one realm's KDC and decodes the replies. It
// implements tgs.KDCSender.
type Client struct {
	Realm   principal.Realm
	KDCAddr string // explicit host:port; auto-discovered via DNS SRV if empty
	Timeout time.Duration
}

// NewClient builds a Client targeting realm, auto-discovering its KDC
// unless kdcAddr is given.
func NewClient(realm principal.Realm, kdcAddr string) *Client {
	return &Client{Realm: realm, KDCAddr: kdcAddr, Timeout: 10 * time.Second}
}

// Send implements tgs.KDCSender: build one TGS-REQ authenticated by
// p.AsTGT, send it, and decode the reply.
func (c *Client) Send(ctx context.Context, p tgs.SendParams) (tgs.Credential, error) {
	etype := p.AsTGT.EType
	if etype == 0 {
		etype = detectEtype(p.AsTGT.SessionKey)
	}

	reqBody := asn1krb5.KDCReqBody{
		KDCOptions: bitString32(uint32(p.Options)),
		Realm:      string(p.RequestedServerName.Realm),
		SName:      toPrincipalName(p.CanonicalServerName),
		Till:       time.Now().UTC().Add(10 * time.Hour),
		Nonce:      newNonce(),
		EType:      []int32{etype, crypto.EtypeAES256, crypto.EtypeAES128, crypto.EtypeRC4},
	}
	if !p.ClientName.Equal(principal.Name{}) {
		cn := toPrincipalName(p.ClientName)
		reqBody.CName = cn
	}
	for _, t := range p.AdditionalTickets {
		tkt, err := decodeOpaqueTicket(t)
		if err != nil {
			return tgs.Credential{}, wrapProtocol("decoding additional ticket", err)
		}
		reqBody.AdditionalTickets = append(reqBody.AdditionalTickets, tkt)
	}

	var padata []asn1krb5.PAData
	paTgsReq, err := buildPATGSReq(p.AsTGT, etype)
	if err != nil {
		return tgs.Credential{}, wrapProtocol("building PA-TGS-REQ", err)
	}
	padata = append(padata, paTgsReq)
	for _, extra := range p.ExtraPreauth {
		padata = append(padata, asn1krb5.PAData{PADataType: extra.Type, PADataValue: extra.Value})
	}

	tgsReq := asn1krb5.TGSREQ{
		PVNO:    asn1krb5.PVNO,
		MsgType: asn1krb5.MsgTypeTGSREQ,
		PAData:  padata,
		ReqBody: reqBody,
	}

	reqBytes, err := asn1.MarshalWithParams(tgsReq, "application,tag:12")
	if err != nil {
		return tgs.Credential{}, wrapProtocol("marshalling TGS-REQ", err)
	}

	addr := c.KDCAddr
	if addr == "" {
		resolved, err := network.ResolveKDC(string(c.Realm), "")
		if err != nil {
			return tgs.Credential{}, wrapIo("resolving KDC for "+string(c.Realm), err)
		}
		addr = resolved
	}

	transport := network.NewKDCTransport(addr)
	transport.Timeout = c.Timeout
	respBytes, err := transport.SendAndReceiveContext(ctx, reqBytes)
	if err != nil {
		return tgs.Credential{}, wrapIo("sending TGS-REQ to "+addr, err)
	}

	if code, detail, isErr := tryParseKRBError(respBytes); isErr {
		return tgs.Credential{}, &tgs.Error{Kind: tgs.KindKdcError, Code: code, Detail: detail}
	}

	var tgsRep asn1krb5.TGSREP
	if _, err := asn1.UnmarshalWithParams(respBytes, &tgsRep, "application,tag:13"); err != nil {
		return tgs.Credential{}, wrapProtocol("parsing TGS-REP", err)
	}

	decrypted, err := decryptEncPart(tgsRep.EncPart, p.AsTGT.SessionKey, etype, crypto.KeyUsageTGSRepSessionKey)
	if err != nil {
		return tgs.Credential{}, wrapProtocol("decrypting TGS-REP enc-part", err)
	}

	var encPart asn1krb5.EncTGSRepPart
	if _, err := asn1.UnmarshalWithParams(decrypted, &encPart, "application,tag:26"); err != nil {
		return tgs.Credential{}, wrapProtocol("parsing EncTGSRepPart", err)
	}

	ticketBytes, err := tgsRep.Ticket.Marshal()
	if err != nil {
		return tgs.Credential{}, wrapProtocol("marshalling issued ticket", err)
	}

	cred := tgs.Credential{
		Client:      fromPrincipalName(tgsRep.CRealm, tgsRep.CName),
		Server:      fromPrincipalName(encPart.SRealm, encPart.SName),
		SessionKey:  encPart.Key.KeyValue,
		EType:       encPart.Key.KeyType,
		Flags:       flagsFromBitString(encPart.Flags),
		StartTime:   encPart.StartTime,
		EndTime:     encPart.EndTime,
		TicketBytes: ticketBytes,
		Ticket: tgs.Ticket{
			Realm:   principal.Realm(tgsRep.Ticket.Realm),
			SName:   fromPrincipalName(tgsRep.Ticket.Realm, tgsRep.Ticket.SName),
			Payload: ticketBytes,
		},
	}
	return cred, nil
}

func newNonce() int32 {
	// RFC 4120 nonces only need to be unpredictable enough to match a
	// reply to its request, not cryptographically secure.
	return int32(time.Now().UnixNano() & 0x7fffffff)
}

// detectEtype is a last-resort fallback for a Credential that was never
// tagged with its etype (e.g. an older .kirbi). It cannot disambiguate
// RC4-HMAC from AES128-CTS-HMAC-SHA1-96: both use 16-byte session keys. Only
// the session key's origin knows which cipher it was actually issued under,
// so Send prefers p.AsTGT.EType and only falls back to this guess when that
// field is unset.
func detectEtype(sessionKey []byte) int32 {
	switch len(sessionKey) {
	case crypto.AES256KeySize:
		return crypto.EtypeAES256
	default:
		return crypto.EtypeRC4
	}
}

func bitString32(bits uint32) asn1.BitString {
	return asn1.BitString{
		Bytes:     []byte{byte(bits >> 24), byte(bits >> 16), byte(bits >> 8), byte(bits)},
		BitLength: 32,
	}
}

func flagsFromBitString(b asn1.BitString) tgs.Flags {
	var bits uint32
	for i, by := range b.Bytes {
		if i >= 4 {
			break
		}
		bits |= uint32(by) << (24 - 8*i)
	}
	return tgs.Flags{
		Forwardable:  bits&asn1krb5.FlagForwardable != 0,
		OkAsDelegate: bits&asn1krb5.FlagOkAsDelegate != 0,
	}
}

func toPrincipalName(n principal.Name) asn1krb5.PrincipalName {
	return asn1krb5.PrincipalName{NameType: n.NameType, NameString: n.NameString}
}

func fromPrincipalName(realm string, n asn1krb5.PrincipalName) principal.Name {
	return principal.Name{NameType: n.NameType, NameString: n.NameString, Realm: principal.Realm(realm)}
}

func decodeOpaqueTicket(t tgs.Ticket) (asn1krb5.Ticket, error) {
	tkt, _, err := asn1krb5.UnmarshalTicket(t.Payload)
	if err != nil {
		return asn1krb5.Ticket{}, err
	}
	return *tkt, nil
}

func tryParseKRBError(data []byte) (code int32, detail string, isError bool) {
	var krbErr asn1krb5.KRBError
	if _, err := asn1.UnmarshalWithParams(data, &krbErr, "application,tag:30"); err != nil {
		return 0, "", false
	}
	return krbErr.ErrorCode, krbErr.EText, true
}

func decryptEncPart(enc asn1krb5.EncryptedData, key []byte, etype int32, usage int) ([]byte, error) {
	switch enc.EType {
	case crypto.EtypeRC4:
		return crypto.DecryptRC4(key, enc.Cipher, usage)
	case crypto.EtypeAES128, crypto.EtypeAES256:
		return crypto.DecryptAES(key, enc.Cipher, usage, int(enc.EType))
	default:
		return nil, fmt.Errorf("unsupported enc-part etype %d", enc.EType)
	}
}

func buildPATGSReq(asTgt tgs.Credential, etype int32) (asn1krb5.PAData, error) {
	now := time.Now().UTC()
	auth := asn1krb5.Authenticator{
		AuthenticatorVno: asn1krb5.PVNO,
		CRealm:           string(asTgt.Client.Realm),
		CName:            toPrincipalName(asTgt.Client),
		CTime:            now,
		CUsec:            int32(now.Nanosecond() / 1000),
	}
	authBytes, err := asn1.MarshalWithParams(auth, "application,tag:2")
	if err != nil {
		return asn1krb5.PAData{}, err
	}

	var encrypted []byte
	switch etype {
	case crypto.EtypeRC4:
		encrypted, err = crypto.EncryptRC4(asTgt.SessionKey, authBytes, crypto.KeyUsageTGSReqPAData)
	default:
		encrypted, err = crypto.EncryptAES(asTgt.SessionKey, authBytes, crypto.KeyUsageTGSReqPAData, int(etype))
	}
	if err != nil {
		return asn1krb5.PAData{}, err
	}

	apReq := asn1krb5.APREQ{
		PVNO:          asn1krb5.PVNO,
		MsgType:       asn1krb5.MsgTypeAPREQ,
		APOptions:     bitString32(0),
		Ticket:        ticketFromBytes(asTgt.TicketBytes),
		Authenticator: asn1krb5.EncryptedData{EType: etype, Cipher: encrypted},
	}
	apReqBytes, err := asn1.MarshalWithParams(apReq, "application,tag:14")
	if err != nil {
		return asn1krb5.PAData{}, err
	}
	return asn1krb5.PAData{PADataType: asn1krb5.PADataTGSReq, PADataValue: apReqBytes}, nil
}

func ticketFromBytes(raw []byte) asn1krb5.Ticket {
	tkt, _, err := asn1krb5.UnmarshalTicket(raw)
	if err != nil {
		return asn1krb5.Ticket{RawBytes: raw}
	}
	tkt.RawBytes = raw
	return *tkt
}

func wrapIo(detail string, cause error) error {
	return &tgs.Error{Kind: tgs.KindIo, Detail: detail, Cause: cause}
}

func wrapProtocol(detail string, cause error) error {
	return &tgs.Error{Kind: tgs.KindProtocol, Detail: detail, Cause: cause}
}
