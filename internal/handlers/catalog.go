// catalog.go
//
// An APK catalog and admin back office data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of urmaxx-clone.
// urmaxx-clone is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// urmaxx-clone is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with urmaxx-clone.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.


package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/virendra-maker/urmaxx-clone/internal/middleware"
	"github.com/virendra-maker/urmaxx-clone/internal/procedures"
	"github.com/virendra-maker/urmaxx-clone/internal/utils"
)

// GetAll handles GET /api/trpc/apks.getAll
// @Summary List catalog entries
// @Description Every catalog entry; empty when the store is unavailable
// @Tags apks
// @Produce json
// @Success 200 {object} utils.ResultResponseStruct
// @Router /trpc/apks.getAll [get]
func (h *ProcedureHandler) GetAll(c *fiber.Ctx) error {
	return utils.ResultResponse(c, h.Procs.GetAll(c.UserContext()))
}

// GetByID handles GET /api/trpc/apks.getById?input={"id":1}
// @Summary Get a catalog entry
// @Description One catalog entry, or null when it does not exist
// @Tags apks
// @Produce json
// @Param input query string true "JSON input, e.g. {\"id\":1}"
// @Success 200 {object} utils.ResultResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /trpc/apks.getById [get]
func (h *ProcedureHandler) GetByID(c *fiber.Ctx) error {
	var in procedures.IDInput
	if err := queryInput(c, &in); err != nil {
		return err
	}

	entry, err := h.Procs.GetByID(c.UserContext(), in)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, entry)
}

// Create handles POST /api/trpc/apks.create
// @Summary Create a catalog entry
// @Description Admin only. Records a CREATE activity log entry.
// @Tags apks
// @Accept json
// @Produce json
// @Param body body procedures.CreateInput true "New entry"
// @Success 200 {object} utils.ResultResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /trpc/apks.create [post]
func (h *ProcedureHandler) Create(c *fiber.Ctx) error {
	var in procedures.CreateInput
	if err := bodyInput(c, &in); err != nil {
		return err
	}

	entry, err := h.Procs.Create(c.UserContext(), middleware.CallerFrom(c), in)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, entry)
}

// Update handles POST /api/trpc/apks.update
// @Summary Update a catalog entry
// @Description Admin only. Only supplied fields change. Records an UPDATE activity log entry.
// @Tags apks
// @Accept json
// @Produce json
// @Param body body procedures.UpdateInput true "Entry id and changed fields"
// @Success 200 {object} utils.ResultResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /trpc/apks.update [post]
func (h *ProcedureHandler) Update(c *fiber.Ctx) error {
	var in procedures.UpdateInput
	if err := bodyInput(c, &in); err != nil {
		return err
	}

	entry, err := h.Procs.Update(c.UserContext(), middleware.CallerFrom(c), in)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, entry)
}

// Delete handles POST /api/trpc/apks.delete
// @Summary Delete a catalog entry
// @Description Admin only. Records a DELETE activity log entry.
// @Tags apks
// @Accept json
// @Produce json
// @Param body body procedures.IDInput true "Entry id"
// @Success 200 {object} utils.ResultResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /trpc/apks.delete [post]
func (h *ProcedureHandler) Delete(c *fiber.Ctx) error {
	var in procedures.IDInput
	if err := bodyInput(c, &in); err != nil {
		return err
	}

	res, err := h.Procs.Delete(c.UserContext(), middleware.CallerFrom(c), in)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, res)
}
