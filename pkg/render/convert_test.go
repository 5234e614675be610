package render

import (
	"context"
	"strings"
	"testing"
)

func TestConvertMissingBinary(t *testing.T) {
	old := rsvgConvert
	rsvgConvert = "orgchart-no-such-converter"
	defer func() { rsvgConvert = old }()

	_, err := ToPDF(context.Background(), []byte("<svg/>"))
	if err == nil || !strings.Contains(err.Error(), "install librsvg") {
		t.Errorf("error = %v, want missing-binary hint", err)
	}
}
