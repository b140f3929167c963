// common.go
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
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/virendra-maker/urmaxx-clone/internal/logging"
	"github.com/virendra-maker/urmaxx-clone/internal/types"
	"github.com/virendra-maker/urmaxx-clone/internal/utils"
)

// envelope is the optional {"json": ...} wrapper some procedure clients send
type envelope struct {
	JSON json.RawMessage `json:"json"`
}

// decodeInput unmarshals raw procedure input into dst. Empty input leaves dst untouched.
func decodeInput(raw []byte, dst interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.JSON) > 0 {
		raw = env.JSON
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return types.NewError(types.ErrValidation, "Invalid input")
	}
	return nil
}

// queryInput reads the input of a query procedure from ?input=
func queryInput(c *fiber.Ctx, dst interface{}) error {
	return decodeInput([]byte(c.Query("input")), dst)
}

// bodyInput reads the input of a mutation procedure from the JSON body
func bodyInput(c *fiber.Ctx, dst interface{}) error {
	return decodeInput(c.Body(), dst)
}

// ErrorHandler renders every error returned by a handler in the error envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var customErr *types.CustomError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &customErr):
		code = customErr.Code
		message = customErr.Message
		errorType = customErr.Type
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code >= fiber.StatusInternalServerError {
		log := logging.Component("http")
		log.Error().Err(err).Str("url", c.OriginalURL()).Msg("request failed")
	}

	return utils.ErrorResponse(c, message, code, errorType)
}
