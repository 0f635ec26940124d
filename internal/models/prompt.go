package models

import "time"

// Wizard step keys. Each key has exactly one prompt template row, seeded at
// startup and editable only through the admin surface.
const (
	StepQuestionnaireOrganization = "questionnaire_organization"
	StepLabResultsAnalysis        = "lab_results_analysis"
	StepTCMAnalysis               = "tcm_analysis"
	StepTimelineGeneration        = "timeline_generation"
	StepIFMMatrixGeneration       = "ifm_matrix_generation"
	StepPlanMedicalNutritionist   = "plan_medical_nutritionist"
	StepPlanOtherProfessional     = "plan_other_professional"
)

const (
	DefaultPromptTemperature = 0.7
	DefaultPromptMaxTokens   = 2000
)

type Prompt struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StepKey     string    `gorm:"uniqueIndex;not null" json:"step_key"`
	Content     string    `gorm:"not null" json:"content"`
	Temperature float64   `gorm:"not null;default:0.7" json:"temperature"`
	MaxTokens   int       `gorm:"not null;default:2000" json:"max_tokens"`
	UpdatedBy   *uint     `json:"updated_by,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
