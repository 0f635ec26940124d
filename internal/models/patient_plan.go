package models

import (
	"errors"
	"strings"
	"time"
)

const (
	ProfessionalMedicalNutritionist = "medical_nutritionist"
	ProfessionalOther               = "other_professional"
)

var (
	ErrPatientDataInvalid   = errors.New("patient data invalid")
	ErrQuestionnaireInvalid = errors.New("questionnaire data invalid")
	ErrTCMInvalid           = errors.New("tcm observations invalid")
	ErrTimelineInvalid      = errors.New("timeline data invalid")
	ErrIFMMatrixInvalid     = errors.New("ifm matrix invalid")
	ErrFinalPlanInvalid     = errors.New("final plan invalid")
)

// PatientPlan is one patient engagement. The six stage payloads are optional
// and filled incrementally; the data layer accepts them in any order.
type PatientPlan struct {
	ID               uint               `gorm:"primaryKey" json:"id"`
	UserID           uint               `gorm:"not null;index" json:"user_id"`
	CompanyID        uint               `gorm:"not null;index" json:"company_id"`
	ProfessionalType string             `gorm:"not null" json:"professional_type"`
	PatientData      PatientData        `gorm:"serializer:json" json:"patient_data"`
	Questionnaire    *QuestionnaireData `gorm:"column:questionnaire_data;serializer:json" json:"questionnaire_data,omitempty"`
	LabResults       *LabResults        `gorm:"serializer:json" json:"lab_results,omitempty"`
	TCMObservations  *TCMObservations   `gorm:"serializer:json" json:"tcm_observations,omitempty"`
	Timeline         *TimelineData      `gorm:"column:timeline_data;serializer:json" json:"timeline_data,omitempty"`
	IFMMatrix        *IFMMatrix         `gorm:"serializer:json" json:"ifm_matrix,omitempty"`
	FinalPlan        *FinalPlan         `gorm:"serializer:json" json:"final_plan,omitempty"`
	CreatedAt        time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time          `gorm:"not null" json:"updated_at"`
}

type PatientData struct {
	Name         string         `json:"name"`
	Age          int            `json:"age,omitempty"`
	IsMenopausal bool           `json:"is_menopausal,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

func (data PatientData) Validate() error {
	if strings.TrimSpace(data.Name) == "" {
		return ErrPatientDataInvalid
	}
	if data.Age < 0 {
		return ErrPatientDataInvalid
	}
	return nil
}

type QuestionnaireData struct {
	Answers  map[string]any `json:"answers"`
	Notes    string         `json:"notes,omitempty"`
	Analysis string         `json:"analysis,omitempty"`
}

func (data QuestionnaireData) Validate() error {
	if len(data.Answers) == 0 {
		return ErrQuestionnaireInvalid
	}
	return nil
}

// LabResults is assembled server-side from the uploaded file and its AI
// analysis; it is never accepted verbatim from a client.
type LabResults struct {
	FileURL       string `json:"file_url"`
	FileName      string `json:"file_name"`
	ExtractedText string `json:"extracted_text,omitempty"`
	Analysis      string `json:"analysis,omitempty"`
}

type TCMObservations struct {
	Tongue   string `json:"tongue,omitempty"`
	Pulse    string `json:"pulse,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Analysis string `json:"analysis,omitempty"`
}

func (data TCMObservations) Validate() error {
	if strings.TrimSpace(data.Tongue) == "" &&
		strings.TrimSpace(data.Pulse) == "" &&
		strings.TrimSpace(data.Notes) == "" {
		return ErrTCMInvalid
	}
	return nil
}

type TimelineEvent struct {
	Moment      string `json:"moment"`
	Description string `json:"description"`
}

type TimelineData struct {
	Events      []TimelineEvent `json:"events"`
	AISuggested string          `json:"ai_suggested,omitempty"`
}

func (data TimelineData) Validate() error {
	if len(data.Events) == 0 {
		return ErrTimelineInvalid
	}
	for _, event := range data.Events {
		if strings.TrimSpace(event.Description) == "" {
			return ErrTimelineInvalid
		}
	}
	return nil
}

type IFMMatrix struct {
	Systems     map[string]string `json:"systems"`
	Notes       string            `json:"notes,omitempty"`
	AISuggested string            `json:"ai_suggested,omitempty"`
}

func (data IFMMatrix) Validate() error {
	if len(data.Systems) == 0 {
		return ErrIFMMatrixInvalid
	}
	return nil
}

type GeneralPlan struct {
	DietaryRecommendations string `json:"dietary_recommendations,omitempty"`
	Supplementation        string `json:"supplementation,omitempty"`
	LifestyleChanges       string `json:"lifestyle_changes,omitempty"`
	StressManagement       string `json:"stress_management,omitempty"`
}

type CyclicalPlan struct {
	Follicular string `json:"follicular,omitempty"`
	Ovulatory  string `json:"ovulatory,omitempty"`
	Luteal     string `json:"luteal,omitempty"`
	Menstrual  string `json:"menstrual,omitempty"`
	Menopausal string `json:"menopausal,omitempty"`
}

type FinalPlan struct {
	PatientData        PatientData  `json:"patient_data"`
	GeneralPlan        GeneralPlan  `json:"general_plan"`
	CyclicalPlan       CyclicalPlan `json:"cyclical_plan"`
	AIGeneratedContent string       `json:"ai_generated_content,omitempty"`
}

func (plan FinalPlan) Validate() error {
	if plan.GeneralPlan == (GeneralPlan{}) &&
		plan.CyclicalPlan == (CyclicalPlan{}) &&
		strings.TrimSpace(plan.AIGeneratedContent) == "" {
		return ErrFinalPlanInvalid
	}
	return nil
}
