package kdcclient

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

func TestStaticCapathSameRealmIsSingleton(t *testing.T) {
	c := NewStaticCapath()
	assert.Equal(t, []principal.Realm{"A"}, c.RealmsList("A", "A"))
}

func TestStaticCapathUnconfiguredPairFallsBackToDirectHop(t *testing.T) {
	c := NewStaticCapath()
	assert.Equal(t, []principal.Realm{"A", "B"}, c.RealmsList("A", "B"))
}

func TestStaticCapathUsesConfiguredHierarchy(t *testing.T) {
	c := NewStaticCapath()
	c.Add("A", "B", []principal.Realm{"A", "C", "B"})

	assert.Equal(t, []principal.Realm{"A", "C", "B"}, c.RealmsList("A", "B"))
	// The reverse direction is not implied by Add.
	assert.Equal(t, []principal.Realm{"B", "A"}, c.RealmsList("B", "A"))
}
