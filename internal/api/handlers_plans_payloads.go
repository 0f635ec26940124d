package api

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lyz-health/lyz/internal/models"
	"github.com/lyz-health/lyz/internal/services"
	"github.com/lyz-health/lyz/internal/storage"
)

// SaveQuestionnaire stores the answers and runs the organization step. An AI
// failure degrades the response, it never fails the save.
func (handler *Handler) SaveQuestionnaire(c *fiber.Ctx) error {
	plan, user, err := handler.planForRequest(c)
	if err != nil {
		return err
	}

	data := models.QuestionnaireData{}
	if err := c.BodyParser(&data); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := data.Validate(); err != nil {
		return apiError(c, fiber.StatusBadRequest, "questionnaire answers are required")
	}

	generation := handler.generationService.Generate(c.Context(), user.ID, plan.CompanyID, models.StepQuestionnaireOrganization, fiber.Map{
		"patient_data": plan.PatientData,
		"answers":      data.Answers,
		"notes":        data.Notes,
	})
	if generation.OK {
		data.Analysis = generation.Content
	}

	plan.Questionnaire = &data
	if err := handler.planService.Save(&plan); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to save questionnaire")
	}
	return c.JSON(stageResponse(plan, generation))
}

// UploadLabResults stores the uploaded document in object storage and runs
// the lab analysis step over the extracted text.
func (handler *Handler) UploadLabResults(c *fiber.Ctx) error {
	plan, user, err := handler.planForRequest(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "a lab results file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "failed to read uploaded file")
	}
	defer file.Close()

	fileName := filepath.Base(fileHeader.Filename)
	objectKey := fmt.Sprintf("lab-results/%d/%s_%s", plan.ID, uuid.NewString(), fileName)
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := handler.store.Put(c.Context(), objectKey, file, fileHeader.Size, contentType); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to store lab results file")
	}
	fileURL, err := handler.store.PresignedGetURL(c.Context(), objectKey, storage.DownloadURLTTL)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to link lab results file")
	}

	results := models.LabResults{
		FileURL:       fileURL,
		FileName:      fileName,
		ExtractedText: strings.TrimSpace(c.FormValue("extracted_text")),
	}

	generation := handler.generationService.Generate(c.Context(), user.ID, plan.CompanyID, models.StepLabResultsAnalysis, fiber.Map{
		"patient_data":   plan.PatientData,
		"file_name":      results.FileName,
		"extracted_text": results.ExtractedText,
	})
	if generation.OK {
		results.Analysis = generation.Content
	}

	plan.LabResults = &results
	if err := handler.planService.Save(&plan); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to save lab results")
	}
	return c.JSON(stageResponse(plan, generation))
}

func (handler *Handler) SaveTCMObservations(c *fiber.Ctx) error {
	plan, user, err := handler.planForRequest(c)
	if err != nil {
		return err
	}

	data := models.TCMObservations{}
	if err := c.BodyParser(&data); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := data.Validate(); err != nil {
		return apiError(c, fiber.StatusBadRequest, "at least one observation is required")
	}

	generation := handler.generationService.Generate(c.Context(), user.ID, plan.CompanyID, models.StepTCMAnalysis, fiber.Map{
		"patient_data": plan.PatientData,
		"tongue":       data.Tongue,
		"pulse":        data.Pulse,
		"notes":        data.Notes,
	})
	if generation.OK {
		data.Analysis = generation.Content
	}

	plan.TCMObservations = &data
	if err := handler.planService.Save(&plan); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to save observations")
	}
	return c.JSON(stageResponse(plan, generation))
}

func (handler *Handler) SaveTimeline(c *fiber.Ctx) error {
	plan, user, err := handler.planForRequest(c)
	if err != nil {
		return err
	}

	input := struct {
		models.TimelineData
		GenerateAITimeline bool `json:"generate_ai_timeline"`
	}{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	data := input.TimelineData
	response := fiber.Map{}
	if input.GenerateAITimeline {
		generation := handler.generationService.Generate(c.Context(), user.ID, plan.CompanyID, models.StepTimelineGeneration, handler.stageContext(plan))
		if generation.OK {
			data.AISuggested = generation.Content
		}
		mergeGeneration(response, generation)
	}

	if len(data.Events) == 0 && data.AISuggested == "" {
		return apiError(c, fiber.StatusBadRequest, "timeline events are required")
	}
	if len(data.Events) > 0 {
		if err := data.Validate(); err != nil {
			return apiError(c, fiber.StatusBadRequest, "every timeline event needs a description")
		}
	}

	plan.Timeline = &data
	if err := handler.planService.Save(&plan); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to save timeline")
	}

	response["plan"] = plan
	return c.JSON(response)
}

func (handler *Handler) SaveIFMMatrix(c *fiber.Ctx) error {
	plan, user, err := handler.planForRequest(c)
	if err != nil {
		return err
	}

	input := struct {
		models.IFMMatrix
		GenerateAIMatrix bool `json:"generate_ai_matrix"`
	}{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	data := input.IFMMatrix
	response := fiber.Map{}
	if input.GenerateAIMatrix {
		generation := handler.generationService.Generate(c.Context(), user.ID, plan.CompanyID, models.StepIFMMatrixGeneration, handler.stageContext(plan))
		if generation.OK {
			data.AISuggested = generation.Content
		}
		mergeGeneration(response, generation)
	}

	if len(data.Systems) == 0 && data.AISuggested == "" {
		return apiError(c, fiber.StatusBadRequest, "matrix systems are required")
	}

	plan.IFMMatrix = &data
	if err := handler.planService.Save(&plan); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to save matrix")
	}

	response["plan"] = plan
	return c.JSON(response)
}

// SaveFinalPlan stores a caller-supplied final plan verbatim, for
// professionals who write or adjust the document by hand.
func (handler *Handler) SaveFinalPlan(c *fiber.Ctx) error {
	plan, _, err := handler.planForRequest(c)
	if err != nil {
		return err
	}

	data := models.FinalPlan{}
	if err := c.BodyParser(&data); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := data.Validate(); err != nil {
		return apiError(c, fiber.StatusBadRequest, "final plan content is required")
	}
	if data.PatientData.Name == "" {
		data.PatientData = plan.PatientData
	}

	plan.FinalPlan = &data
	if err := handler.planService.Save(&plan); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to save final plan")
	}
	return c.JSON(fiber.Map{"plan": plan})
}

// stageContext gathers whatever stages the plan has so far for the prompt
// input. Missing stages stay absent rather than appearing as nulls.
func (handler *Handler) stageContext(plan models.PatientPlan) fiber.Map {
	context := fiber.Map{"patient_data": plan.PatientData}
	if plan.Questionnaire != nil {
		context["questionnaire"] = plan.Questionnaire
	}
	if plan.LabResults != nil {
		context["lab_results"] = plan.LabResults
	}
	if plan.TCMObservations != nil {
		context["tcm_observations"] = plan.TCMObservations
	}
	if plan.Timeline != nil {
		context["timeline"] = plan.Timeline
	}
	if plan.IFMMatrix != nil {
		context["ifm_matrix"] = plan.IFMMatrix
	}
	return context
}

func stageResponse(plan models.PatientPlan, generation services.GenerationResult) fiber.Map {
	response := fiber.Map{"plan": plan}
	mergeGeneration(response, generation)
	return response
}

func mergeGeneration(response fiber.Map, generation services.GenerationResult) {
	if generation.OK {
		response["tokens_used"] = generation.TokensUsed
		return
	}
	response["ai_error"] = generation.Message
}
