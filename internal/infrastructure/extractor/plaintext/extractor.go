package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/idu-service/internal/core/domain"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, upload domain.Upload) (string, error) {
	if !utf8.Valid(upload.Data) {
		return "", domain.WrapError(domain.ErrNoTextExtracted, "decode text", fmt.Errorf("%s is not valid UTF-8", upload.Filename))
	}
	return strings.TrimPrefix(string(upload.Data), "\ufeff"), nil
}
