package domain

// Deal lifecycle stages. New deals start in PipelineStageProspecting.
const (
	PipelineStageProspecting = "Prospecting"
	PipelineStageQualified   = "Qualified"
	PipelineStageProposal    = "Proposal"
	PipelineStageNegotiation = "Negotiation"
	PipelineStageWon         = "Won"
	PipelineStageLost        = "Lost"

	InitialPipelineStage = PipelineStageProspecting
)

var knownPipelineStages = map[string]struct{}{
	PipelineStageProspecting: {},
	PipelineStageQualified:   {},
	PipelineStageProposal:    {},
	PipelineStageNegotiation: {},
	PipelineStageWon:         {},
	PipelineStageLost:        {},
}

func IsKnownPipelineStage(stage string) bool {
	_, ok := knownPipelineStages[stage]
	return ok
}

// Lead intake statuses. Transitions into Contacted and Qualified carry score bonuses.
const (
	LeadStatusNew          = "New"
	LeadStatusContacted    = "Contacted"
	LeadStatusQualified    = "Qualified"
	LeadStatusDisqualified = "Disqualified"
)

var knownLeadStatuses = map[string]struct{}{
	LeadStatusNew:          {},
	LeadStatusContacted:    {},
	LeadStatusQualified:    {},
	LeadStatusDisqualified: {},
}

func IsKnownLeadStatus(status string) bool {
	_, ok := knownLeadStatuses[status]
	return ok
}
