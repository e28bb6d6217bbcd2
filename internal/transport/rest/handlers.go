package rest

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/registry"
	"go.uber.org/zap"
)

type addOutputsRequest struct {
	Outputs []string `json:"outputs"`
	Channel string   `json:"channel"`
}

type conflict struct {
	Output string `json:"output"`
	Error  string `json:"error"`
}

type addOutputsResponse struct {
	Inserted  []model.Subscription `json:"inserted"`
	Conflicts []conflict           `json:"conflicts"`
	Failures  []conflict           `json:"failures"`
}

func (s *Server) listOutputs(c *fiber.Ctx) error {
	subs, err := s.service.List(c.UserContext())
	if err != nil {
		return err
	}
	if subs == nil {
		subs = []model.Subscription{}
	}
	return c.JSON(subs)
}

func (s *Server) addOutputs(c *fiber.Ctx) error {
	var req addOutputsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Outputs) == 0 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "outputs field required")
	}
	if req.Channel == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "channel field required")
	}

	results, err := s.service.AddSubscriptions(c.UserContext(), req.Outputs, req.Channel)
	if err != nil {
		if errors.Is(err, registry.ErrInvalid) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return err
	}

	resp := addOutputsResponse{
		Inserted:  make([]model.Subscription, 0, len(results)),
		Conflicts: []conflict{},
		Failures:  []conflict{},
	}
	invalid, faults := 0, 0
	for _, res := range results {
		switch {
		case res.Err == nil:
			resp.Inserted = append(resp.Inserted, res.Subscription)
		case errors.Is(res.Err, registry.ErrDuplicate):
			resp.Conflicts = append(resp.Conflicts, conflict{Output: res.Descriptor, Error: res.Err.Error()})
		case errors.Is(res.Err, registry.ErrInvalid):
			invalid++
			resp.Failures = append(resp.Failures, conflict{Output: res.Descriptor, Error: res.Err.Error()})
		default:
			faults++
			resp.Failures = append(resp.Failures, conflict{Output: res.Descriptor, Error: res.Err.Error()})
			s.logger.Error("insert subscription failed", zap.String("output", res.Descriptor), zap.Error(res.Err))
		}
	}

	return c.Status(addOutputsStatus(len(resp.Inserted), len(resp.Conflicts), invalid, faults)).JSON(resp)
}

// addOutputsStatus reports 200 as soon as one item was inserted; otherwise the worst item outcome wins.
func addOutputsStatus(inserted, conflicts, invalid, faults int) int {
	switch {
	case inserted > 0:
		return fiber.StatusOK
	case faults > 0:
		return fiber.StatusInternalServerError
	case invalid > 0:
		return fiber.StatusUnprocessableEntity
	case conflicts > 0:
		return fiber.StatusConflict
	default:
		return fiber.StatusOK
	}
}

func (s *Server) removeOutput(c *fiber.Ctx) error {
	removed, err := s.service.Remove(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"numRemoved": removed})
}

func (s *Server) listExpired(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = l
	}

	tasks, err := s.service.Expired(c.UserContext(), limit)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []model.DeliveryTask{}
	}
	return c.JSON(tasks)
}

func (s *Server) activeFilter(c *fiber.Ctx) error {
	active := s.service.ActiveFilter()
	if active == nil {
		return c.JSON(fiber.Map{"active": false})
	}
	return c.JSON(fiber.Map{
		"active":       true,
		"handle":       active.Handle,
		"count":        active.Count,
		"digest":       active.Digest,
		"published_at": active.PublishedAt,
	})
}

func (s *Server) callbackTest(c *fiber.Ctx) error {
	s.logger.Info("callback test received",
		zap.Bool("secret", c.Query("secret") != ""),
		zap.Int("bytes", len(c.Body())),
	)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(c.Body())
}
