package rest

import (
	"net/http"

	"github.com/AndreyChufelin/kbpanel/internal/toast"
	"github.com/labstack/echo/v4"
)

func (s *Server) listStatesHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, envelope{
		"states":    s.states.States(),
		"otherwise": s.states.Otherwise(),
	})
}

func (s *Server) resolveStateHandler(c echo.Context) error {
	target := c.QueryParam("url")
	if target == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}

	return c.JSON(http.StatusOK, envelope{
		"match": s.states.ResolveOrDefault(target),
	})
}

// shellHandler answers navigation requests with the state the panel shell
// has to render. Unknown locations redirect to the default state. The table
// decodes params itself, so it gets the path still escaped.
func (s *Server) shellHandler(c echo.Context) error {
	m, ok := s.states.Resolve(c.Request().URL.EscapedPath())
	if !ok {
		return c.Redirect(http.StatusFound, s.states.Otherwise())
	}

	return c.JSON(http.StatusOK, envelope{
		"match": m,
	})
}

func (s *Server) toastConfigHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.toasts)
}

// renderToastHandler returns the markup of one toast for shells that do not
// build it themselves.
func (s *Server) renderToastHandler(c echo.Context) error {
	var input struct {
		Level   toast.Level `json:"level" validate:"required,oneof=error info success warning"`
		Title   string      `json:"title" validate:"max=1000"`
		Message string      `json:"message" validate:"required,max=10000"`
	}
	err := c.Bind(&input)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bad request")
	}
	if err = c.Validate(&input); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{
		"html": s.toasts.Render(toast.Toast{
			Level:     input.Level,
			Title:     input.Title,
			Message:   input.Message,
			IconClass: s.toasts.IconClasses[input.Level],
		}),
	})
}

func (s *Server) renderMarkdownHandler(c echo.Context) error {
	var input struct {
		Source string `json:"source" validate:"required,max=1000000"`
	}
	err := c.Bind(&input)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bad request")
	}
	if err = c.Validate(&input); err != nil {
		return err
	}

	html, err := s.markdown.Render([]byte(input.Source))
	if err != nil {
		s.logger.Error("failed to render markdown", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, envelope{
		"html": string(html),
	})
}
