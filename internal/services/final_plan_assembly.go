package services

import "github.com/lyz-health/lyz/internal/models"

// AssembleFinalPlan wraps the generated text into the structured plan
// document. The section texts are stand-ins until the generated content is
// parsed into them.
// TODO: split the completion output into the general and cyclical sections
// instead of pointing every section at the full text.
func AssembleFinalPlan(plan models.PatientPlan, generatedContent string) models.FinalPlan {
	final := models.FinalPlan{
		PatientData: plan.PatientData,
		GeneralPlan: models.GeneralPlan{
			DietaryRecommendations: "Consulte o conteúdo gerado para as recomendações alimentares.",
			Supplementation:        "Consulte o conteúdo gerado para a suplementação.",
			LifestyleChanges:       "Consulte o conteúdo gerado para as mudanças de estilo de vida.",
			StressManagement:       "Consulte o conteúdo gerado para o manejo do estresse.",
		},
		CyclicalPlan: models.CyclicalPlan{
			Follicular: "Consulte o conteúdo gerado para a fase folicular.",
			Ovulatory:  "Consulte o conteúdo gerado para a fase ovulatória.",
			Luteal:     "Consulte o conteúdo gerado para a fase lútea.",
			Menstrual:  "Consulte o conteúdo gerado para a fase menstrual.",
		},
		AIGeneratedContent: generatedContent,
	}
	if plan.PatientData.IsMenopausal {
		final.CyclicalPlan.Menopausal = "Consulte o conteúdo gerado para as adaptações no climatério."
	}
	return final
}
