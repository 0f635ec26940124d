package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
	"github.com/lyz-health/lyz/internal/models"
	"github.com/lyz-health/lyz/internal/storage"
)

var ErrPlanNotGenerated = errors.New("plan has not been generated yet")

const (
	ExportFormatPDF  = "pdf"
	ExportFormatDOCX = "docx"
)

type ExportService struct {
	store storage.ObjectStore
}

func NewExportService(store storage.ObjectStore) *ExportService {
	return &ExportService{store: store}
}

type ExportResult struct {
	DownloadURL string
	FileName    string
}

// Export renders the plan document, stores it, and returns a time-limited
// download link. Both requested formats currently produce the same HTML
// document, as the product has always done.
func (service *ExportService) Export(ctx context.Context, plan models.PatientPlan, format string) (ExportResult, error) {
	if plan.FinalPlan == nil {
		return ExportResult{}, ErrPlanNotGenerated
	}
	if format != ExportFormatPDF && format != ExportFormatDOCX {
		format = ExportFormatPDF
	}

	document, err := RenderPlanDocument(plan)
	if err != nil {
		return ExportResult{}, fmt.Errorf("render plan document: %w", err)
	}

	fileName := fmt.Sprintf("plan_%d_%s.html", plan.ID, uuid.NewString())
	objectKey := "plans/" + fileName

	if err := service.store.Put(ctx, objectKey, bytes.NewReader(document), int64(len(document)), "text/html; charset=utf-8"); err != nil {
		return ExportResult{}, fmt.Errorf("store plan document: %w", err)
	}

	downloadURL, err := service.store.PresignedGetURL(ctx, objectKey, storage.DownloadURLTTL)
	if err != nil {
		return ExportResult{}, fmt.Errorf("presign plan document: %w", err)
	}

	return ExportResult{DownloadURL: downloadURL, FileName: fileName}, nil
}

type planDocumentSection struct {
	Title string
	Body  string
}

type planDocumentView struct {
	GeneratedAt      string
	PatientName      string
	PatientAge       int
	GeneralSections  []planDocumentSection
	CyclicalSections []planDocumentSection
	AIContent        string
}

// RenderPlanDocument produces the standalone HTML plan document handed to
// patients.
func RenderPlanDocument(plan models.PatientPlan) ([]byte, error) {
	if plan.FinalPlan == nil {
		return nil, ErrPlanNotGenerated
	}
	final := *plan.FinalPlan

	view := planDocumentView{
		GeneratedAt: time.Now().Format("02/01/2006"),
		PatientName: final.PatientData.Name,
		PatientAge:  final.PatientData.Age,
		AIContent:   final.AIGeneratedContent,
	}
	if view.PatientName == "" {
		view.PatientName = plan.PatientData.Name
	}

	general := []planDocumentSection{
		{Title: "Recomendações Alimentares", Body: final.GeneralPlan.DietaryRecommendations},
		{Title: "Suplementação", Body: final.GeneralPlan.Supplementation},
		{Title: "Modificações de Estilo de Vida", Body: final.GeneralPlan.LifestyleChanges},
		{Title: "Gerenciamento de Estresse", Body: final.GeneralPlan.StressManagement},
	}
	for _, section := range general {
		if section.Body != "" {
			view.GeneralSections = append(view.GeneralSections, section)
		}
	}

	cyclical := []planDocumentSection{
		{Title: "Fase Folicular", Body: final.CyclicalPlan.Follicular},
		{Title: "Fase Ovulatória", Body: final.CyclicalPlan.Ovulatory},
		{Title: "Fase Lútea", Body: final.CyclicalPlan.Luteal},
		{Title: "Fase Menstrual", Body: final.CyclicalPlan.Menstrual},
		{Title: "Recomendações para Climatério/Menopausa", Body: final.CyclicalPlan.Menopausal},
	}
	for _, section := range cyclical {
		if section.Body != "" {
			view.CyclicalSections = append(view.CyclicalSections, section)
		}
	}

	var output bytes.Buffer
	if err := planDocumentTemplate.Execute(&output, view); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

var planDocumentTemplate = template.Must(template.New("plan_document").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="UTF-8">
<title>Plano Personalizado - Lyz</title>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  h1 { color: #6a1b9a; }
  h2 { color: #9c27b0; border-bottom: 1px solid #e0e0e0; padding-bottom: 10px; }
  h3 { color: #ab47bc; }
  .header { text-align: center; margin-bottom: 30px; }
  .section { margin-bottom: 30px; }
  .patient-info { background-color: #f3e5f5; padding: 15px; border-radius: 5px; }
  .phase { background-color: #faf3fb; padding: 15px; margin-bottom: 15px; border-radius: 5px; }
  .footer { text-align: center; margin-top: 50px; font-size: 0.8em; color: #9e9e9e; }
</style>
</head>
<body>
<div class="header">
  <h1>Plano Personalizado</h1>
  <p>Gerado por Lyz - Especialista em Ciclicidade Feminina</p>
  <p>{{.GeneratedAt}}</p>
</div>
<div class="section patient-info">
  <h2>Informações da Paciente</h2>
  <p><strong>Nome:</strong> {{if .PatientName}}{{.PatientName}}{{else}}Não informado{{end}}</p>
  <p><strong>Idade:</strong> {{if .PatientAge}}{{.PatientAge}}{{else}}Não informada{{end}}</p>
</div>
{{if .GeneralSections}}
<div class="section">
  <h2>Plano Geral</h2>
  {{range .GeneralSections}}
  <div class="subsection">
    <h3>{{.Title}}</h3>
    <p>{{.Body}}</p>
  </div>
  {{end}}
</div>
{{end}}
{{if .CyclicalSections}}
<div class="section">
  <h2>Plano Cíclico</h2>
  {{range .CyclicalSections}}
  <div class="phase">
    <h3>{{.Title}}</h3>
    <p>{{.Body}}</p>
  </div>
  {{end}}
</div>
{{end}}
{{if .AIContent}}
<div class="section">
  <h2>Conteúdo Gerado</h2>
  <p>{{.AIContent}}</p>
</div>
{{end}}
<div class="footer">
  <p>Este plano foi gerado automaticamente pelo sistema Lyz e deve ser utilizado sob supervisão de um profissional de saúde.</p>
</div>
</body>
</html>
`))
