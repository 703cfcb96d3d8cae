// Package controller mounts the REST endpoints of a registered entity model
// onto a Fiber router.
//
// Mount registers the full route set for one entity under a common prefix:
//
//	POST   /            create one
//	POST   /many        create many
//	POST   /search      filtered search
//	GET    /            list with pagination and sorting
//	GET    /count       total row count
//	GET    /:id         read one
//	PATCH  /:id         partial update by path id
//	PATCH  /            partial update, id in body
//	PATCH  /many        bulk partial update, ids in body
//	PUT    /            upsert one
//	PUT    /many        bulk upsert
//	DELETE /:id         delete one
//	DELETE /            delete all, count in the X-DELETED-COUNT header
//
// Request bodies are validated with the val package before they reach the
// model; malformed ids and unparsable bodies map to validation errors.
package controller

import (
	"strconv"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/crudkit/crud"
	"github.com/rise-and-shine/crudkit/pagination"
	"github.com/rise-and-shine/crudkit/sorter"
	"github.com/rise-and-shine/crudkit/val"
	"github.com/spf13/cast"
)

const (
	codeInvalidBody = "INVALID_BODY"
	codeInvalidID   = "INVALID_ID"

	// deletedCountHeader carries the number of rows removed by DELETE /.
	deletedCountHeader = "X-DELETED-COUNT"
)

// Mount registers the REST endpoints of the model on the given router.
func Mount[E, C, U, S any](r fiber.Router, m *crud.Model[E, C, U, S]) {
	h := handler[E, C, U, S]{model: m}

	r.Post("/many", h.createMany)
	r.Post("/search", h.search)
	r.Post("/", h.createOne)

	r.Get("/count", h.count)
	r.Get("/:id", h.readOne)
	r.Get("/", h.readAll)

	r.Patch("/many", h.updateMany)
	r.Patch("/:id", h.updateOne)
	r.Patch("/", h.updateOneWithID)

	r.Put("/many", h.upsertMany)
	r.Put("/", h.upsertOne)

	r.Delete("/:id", h.deleteOne)
	r.Delete("/", h.deleteAll)
}

type handler[E, C, U, S any] struct {
	model *crud.Model[E, C, U, S]
}

func (h handler[E, C, U, S]) createOne(c *fiber.Ctx) error {
	dto, err := parseBody[C](c)
	if err != nil {
		return err
	}

	entity, err := h.model.CreateOne(c.UserContext(), *dto)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(entity)
}

func (h handler[E, C, U, S]) createMany(c *fiber.Ctx) error {
	dtos, err := parseBodySlice[C](c)
	if err != nil {
		return err
	}

	res, err := h.model.CreateMany(c.UserContext(), dtos)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h handler[E, C, U, S]) readOne(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	entity, err := h.model.ReadOne(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(entity)
}

func (h handler[E, C, U, S]) readAll(c *fiber.Ctx) error {
	entities, err := h.model.ReadAll(c.UserContext(), queryPagination(c), h.querySort(c))
	if err != nil {
		return err
	}

	return c.JSON(entities)
}

func (h handler[E, C, U, S]) count(c *fiber.Ctx) error {
	count, err := h.model.Count(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"count": count})
}

func (h handler[E, C, U, S]) updateOne(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	dto, err := parseBody[U](c)
	if err != nil {
		return err
	}

	entity, err := h.model.UpdateOne(c.UserContext(), id, *dto)
	if err != nil {
		return err
	}

	return c.JSON(entity)
}

func (h handler[E, C, U, S]) updateOneWithID(c *fiber.Ctx) error {
	dto, err := parseBody[U](c)
	if err != nil {
		return err
	}

	entity, err := h.model.UpdateOneWithID(c.UserContext(), *dto)
	if err != nil {
		return err
	}

	return c.JSON(entity)
}

func (h handler[E, C, U, S]) updateMany(c *fiber.Ctx) error {
	dtos, err := parseBodySlice[U](c)
	if err != nil {
		return err
	}

	res, err := h.model.UpdateManyWithID(c.UserContext(), dtos)
	if err != nil {
		return err
	}

	return c.JSON(res)
}

func (h handler[E, C, U, S]) upsertOne(c *fiber.Ctx) error {
	dto, err := parseBody[C](c)
	if err != nil {
		return err
	}

	entity, err := h.model.UpsertOne(c.UserContext(), *dto)
	if err != nil {
		return err
	}

	return c.JSON(entity)
}

func (h handler[E, C, U, S]) upsertMany(c *fiber.Ctx) error {
	dtos, err := parseBodySlice[C](c)
	if err != nil {
		return err
	}

	res, err := h.model.UpsertMany(c.UserContext(), dtos)
	if err != nil {
		return err
	}

	return c.JSON(res)
}

func (h handler[E, C, U, S]) deleteOne(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.model.DeleteOne(c.UserContext(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h handler[E, C, U, S]) deleteAll(c *fiber.Ctx) error {
	count, err := h.model.DeleteAll(c.UserContext())
	if err != nil {
		return err
	}

	c.Set(deletedCountHeader, strconv.Itoa(count))

	return c.SendStatus(fiber.StatusNoContent)
}

func (h handler[E, C, U, S]) search(c *fiber.Ctx) error {
	dto, err := parseBody[S](c)
	if err != nil {
		return err
	}

	join := crud.JoinAnd
	if c.Query("join_operator") == string(crud.JoinOr) {
		join = crud.JoinOr
	}

	entities, err := h.model.Search(c.UserContext(), *dto, join, queryPagination(c), h.querySort(c))
	if err != nil {
		return err
	}

	return c.JSON(entities)
}

// querySort parses the "sort" query parameter ("field:asc,other:desc"),
// allowing only the model's column names as sort fields.
func (h handler[E, C, U, S]) querySort(c *fiber.Ctx) sorter.SortOpts {
	return sorter.MakeFromStr(c.Query("sort"), h.model.ColumnNames()...)
}

// parseBody decodes and validates a single DTO from the request body.
func parseBody[T any](c *fiber.Ctx) (*T, error) {
	dto := new(T)
	if err := c.BodyParser(dto); err != nil {
		return nil, errx.Wrap(err,
			errx.WithCode(codeInvalidBody),
			errx.WithType(errx.T_Validation),
		)
	}

	if err := val.ValidateSchema(dto); err != nil {
		return nil, errx.Wrap(err)
	}

	return dto, nil
}

// parseBodySlice decodes and validates a JSON array of DTOs, item by item.
func parseBodySlice[T any](c *fiber.Ctx) ([]T, error) {
	var dtos []T
	if err := c.BodyParser(&dtos); err != nil {
		return nil, errx.Wrap(err,
			errx.WithCode(codeInvalidBody),
			errx.WithType(errx.T_Validation),
		)
	}

	for i := range dtos {
		if err := val.ValidateSchema(&dtos[i]); err != nil {
			return nil, errx.Wrap(err, errx.WithDetails(errx.D{"index": i}))
		}
	}

	return dtos, nil
}

// pathID parses the ":id" path parameter. Parsing is strict: fractional or
// otherwise non-integer values are rejected rather than truncated.
func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errx.New(
			"id must be a positive integer",
			errx.WithCode(codeInvalidID),
			errx.WithType(errx.T_Validation),
		)
	}

	return id, nil
}

// queryPagination parses limit/offset and page/size query parameters.
// Parsing is loose: unparsable values fall back to zero and are resolved to
// the configured defaults by Normalize.
func queryPagination(c *fiber.Ctx) pagination.Params {
	return pagination.Params{
		Limit:  cast.ToInt(c.Query("limit")),
		Offset: cast.ToInt(c.Query("offset")),
		Page:   cast.ToInt(c.Query("page")),
		Size:   cast.ToInt(c.Query("size")),
	}
}
