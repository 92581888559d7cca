package http

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"royal-villa/internal/response"
)

// respond escribe el envelope con su status. Un NoContent se entrega con 200
// para que el cuerpo llegue al cliente.
func respond(c *gin.Context, res response.Result) {
	status := res.StatusCode()
	if status == http.StatusNoContent {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

func abortWith(c *gin.Context, res response.Result) {
	respond(c, res)
	c.Abort()
}

var fieldNamesOnce sync.Once

// useJSONFieldNames hace que los errores de validacion usen el nombre JSON del campo.
func useJSONFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindingErrors traduce errores de binding a {campo: regla}.
func bindingErrors(err error) any {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return out
	}
	return []string{err.Error()}
}
