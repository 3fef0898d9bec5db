package models_test

import (
	"testing"
	"time"

	"github.com/Spok95/student-contracts-backend/internal/models"
)

func TestContractState_DerivedFromDates(t *testing.T) {
	now := time.Now()

	c := models.Contract{}
	if !c.IsDraft() || c.State() != models.StateDraft {
		t.Fatal("контракт без дат — черновик")
	}

	c.SubmitDate = &now
	if !c.IsSubmitted() || c.State() != models.StateSubmitted {
		t.Fatal("контракт с submit_date — подан")
	}
	if c.IsDraft() || c.IsFinalized() {
		t.Fatal("состояния взаимоисключающие")
	}

	c.ConvenerApprovalDate = &now
	if !c.IsFinalized() || c.State() != models.StateFinalized {
		t.Fatal("контракт с convener_approval_date — утверждён")
	}
	if c.IsSubmitted() {
		t.Fatal("утверждённый контракт не считается поданным")
	}
}

func TestSupervise_Approved(t *testing.T) {
	s := models.Supervise{}
	if s.IsApproved() {
		t.Fatal("номинация без даты не согласована")
	}
	now := time.Now()
	s.SupervisorApprovalDate = &now
	if !s.IsApproved() {
		t.Fatal("номинация с датой согласована")
	}
}
