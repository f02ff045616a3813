package uninstall

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldRegister_FrameworkIDPresentAlwaysRegisters(t *testing.T) {
	assert.True(t, ShouldRegister(nil, true))
}

func TestShouldRegister_UnreleasedResourceRequiresRegistration(t *testing.T) {
	tasks := []TaskRecord{{Name: "a", Resources: []Resource{{ReservationID: "r1"}}}}
	assert.True(t, ShouldRegister(tasks, false))
}

func TestShouldRegister_NothingLeftSkipsRegistration(t *testing.T) {
	tasks := []TaskRecord{{Name: "a", Resources: []Resource{{ReservationID: ReservationID("r1").Tombstone()}}}}
	assert.False(t, ShouldRegister(tasks, false))
}

func TestShouldRegister_EmptyStoreSkipsRegistration(t *testing.T) {
	assert.False(t, ShouldRegister(nil, false))
}
