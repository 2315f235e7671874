package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskReconcileIdentifiers = "identifiers.reconcile"

const TaskScoreCompany = "accounts.score_company"

type ReconcileIdentifiersPayload struct {
	Strategy string `json:"strategy"`
	DryRun   bool   `json:"dryRun"`
}

type ScoreCompanyPayload struct {
	AccountID string `json:"accountId"`
}

func NewReconcileIdentifiersTask(payload ReconcileIdentifiersPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileIdentifiers, data), nil
}

func ParseReconcileIdentifiersPayload(task *asynq.Task) (ReconcileIdentifiersPayload, error) {
	var payload ReconcileIdentifiersPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReconcileIdentifiersPayload{}, err
	}
	return payload, nil
}

func NewScoreCompanyTask(payload ScoreCompanyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScoreCompany, data), nil
}

func ParseScoreCompanyPayload(task *asynq.Task) (ScoreCompanyPayload, error) {
	var payload ScoreCompanyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ScoreCompanyPayload{}, err
	}
	return payload, nil
}
