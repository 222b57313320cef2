package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"
)

func jsonBody(raw string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(raw))
}

func ginParam(key, value string) gin.Param {
	return gin.Param{Key: key, Value: value}
}
