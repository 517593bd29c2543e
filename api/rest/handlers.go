package rest

import (
	"github.com/gofiber/fiber/v2"

	"teamresumes/agent-engine/pkg/types"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ExecuteRequest is the body of the execute endpoints. Workflow is
// required on /workflows/execute and ignored on /workflows/:name/execute.
type ExecuteRequest struct {
	Workflow *types.WorkflowDefinition `json:"workflow,omitempty"`
	Version  string                    `json:"version,omitempty"`
	Context  map[string]any            `json:"context,omitempty"`
}

func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) listWorkflows(c *fiber.Ctx) error {
	names := s.engine.ListWorkflows()
	workflows := make([]fiber.Map, 0, len(names))
	for _, name := range names {
		workflows = append(workflows, fiber.Map{
			"name":     name,
			"versions": s.engine.WorkflowVersions(name),
		})
	}
	return c.JSON(fiber.Map{"workflows": workflows})
}

func (s *Server) registerWorkflow(c *fiber.Ctx) error {
	var def types.WorkflowDefinition
	if err := c.BodyParser(&def); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
	}

	if err := s.engine.RegisterWorkflow(&def); err != nil {
		return c.Status(statusForError(err)).JSON(ErrorResponse{
			Error:   "invalid_workflow",
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"name":    def.Name,
		"version": def.Version,
	})
}

func (s *Server) getWorkflow(c *fiber.Ctx) error {
	def, ok := s.engine.GetWorkflow(c.Params("name"), c.Query("version"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "no such workflow",
		})
	}
	return c.JSON(def)
}

func (s *Server) executeWorkflow(c *fiber.Ctx) error {
	var req ExecuteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
	}
	if req.Workflow == nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "missing workflow definition",
		})
	}

	report, err := s.engine.ExecuteWorkflow(c.UserContext(), req.Workflow, nil, req.Context)
	if err != nil {
		return c.Status(statusForError(err)).JSON(ErrorResponse{
			Error:   "invalid_workflow",
			Message: err.Error(),
		})
	}
	return sendReport(c, report)
}

func (s *Server) executeByName(c *fiber.Ctx) error {
	var req ExecuteRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   "bad_request",
				Message: err.Error(),
			})
		}
	}

	report, err := s.engine.ExecuteByName(c.UserContext(), c.Params("name"), req.Version, nil, req.Context)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	}
	return sendReport(c, report)
}

func (s *Server) securityReport(c *fiber.Ctx) error {
	return c.JSON(s.engine.SecurityReport())
}

// sendReport renders a report with the engine's own JSON encoder so the
// HTTP payload matches what the engine logs.
func sendReport(c *fiber.Ctx, report *types.ExecutionReport) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(report.JSON())
}
