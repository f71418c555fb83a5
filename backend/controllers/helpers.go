package controllers

import (
	"strconv"

	"advocatr/backend/services"
	"advocatr/backend/utils"

	"github.com/gofiber/fiber/v2"
)

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return utils.BadRequestError("Cannot parse JSON")
	}
	return nil
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.BadRequestError("Invalid " + param)
	}
	return uint(id), nil
}

func sessionMeta(c *fiber.Ctx) services.SessionMeta {
	return services.SessionMeta{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}
