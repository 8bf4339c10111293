package middlewares

import (
	"github.com/mufasadev/txwebhook/internal/errors"
	"github.com/mufasadev/txwebhook/pkg/log"
	"mime"
	"net/http"
	"strings"
)

// JSONContentTypeMiddleware only lets requests declaring a JSON body through.
func JSONContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || !(mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")) {
			logger := log.GetLogger()
			logger.Debug().Str("content_type", r.Header.Get("Content-Type")).Msg(errors.ErrContentTypeJSON)
			errors.HandleHTTPError(w, errors.NewUnsupportedMediaTypeError())
			return
		}

		next.ServeHTTP(w, r)
	})
}
