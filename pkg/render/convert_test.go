package render

import (
	"context"
	"testing"

	ferrors "github.com/matzehuels/flowcanvas/pkg/errors"
)

func TestConvertRejectsInput(t *testing.T) {
	tests := []struct {
		name   string
		svg    []byte
		format string
		want   ferrors.Code
	}{
		{"unknown format", []byte("<svg/>"), "gif", ferrors.ErrCodeUnsupported},
		{"svg to svg", []byte("<svg/>"), "svg", ferrors.ErrCodeUnsupported},
		{"empty svg", nil, "pdf", ferrors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(context.Background(), tt.svg, tt.format, 1)
			if got := ferrors.GetCode(err); got != tt.want {
				t.Errorf("Convert() code = %v, want %v (err %v)", got, tt.want, err)
			}
		})
	}
}
