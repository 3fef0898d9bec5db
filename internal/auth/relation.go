package auth

import (
	"context"

	"github.com/Spok95/student-contracts-backend/internal/db"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

// LoadRelation — собирает отношения актора к контракту из хранилища.
// namedSupervisorID / namedExaminerID — ID пользователя из конкретной
// номинации/назначения, если действие адресовано им (иначе 0).
func LoadRelation(ctx context.Context, q db.Querier, contract *models.Contract, actorID, namedSupervisorID, namedExaminerID int64) (Relation, error) {
	rel := Relation{
		IsOwner:           contract.OwnerID == actorID,
		IsNamedSupervisor: namedSupervisorID != 0 && namedSupervisorID == actorID,
		IsNamedExaminer:   namedExaminerID != 0 && namedExaminerID == actorID,
	}

	formal, err := db.IsSupervisorOf(ctx, q, contract.ID, actorID, true)
	if err != nil {
		return rel, err
	}
	rel.IsFormalSupervisor = formal

	if formal {
		rel.IsAnySupervisor = true
	} else {
		anySup, err := db.IsSupervisorOf(ctx, q, contract.ID, actorID, false)
		if err != nil {
			return rel, err
		}
		rel.IsAnySupervisor = anySup
	}
	return rel, nil
}

func MetaOf(c *models.Contract) ContractMeta {
	return ContractMeta{State: c.State(), Type: c.Type}
}
