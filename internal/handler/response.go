package handler

// response.go defines the JSON envelope used by every endpoint. Successful
// responses carry success=true plus the payload under a named key; failures
// carry success=false and a human-readable message. The offline client's
// replay loop depends on this shape to tell validation failures apart from
// transient ones.

import "github.com/labstack/echo/v4"

// respond writes a success envelope with the given payload merged in.
func respond(c echo.Context, status int, payload echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(status, body)
}

// fail writes a failure envelope with the given status and message.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}
