package pdf_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
	"github.com/jhoicas/emed-onboarding/internal/infrastructure/pdf"
)

func TestQRContent(t *testing.T) {
	assert.Equal(t, "ABC234", pdf.QRContent("", "ABC234"))
	assert.Equal(t, "https://enroll.test/start?code=ABC234", pdf.QRContent("https://enroll.test/start", "ABC234"))
	assert.Equal(t, "https://enroll.test/?ref=qr&code=ABC234", pdf.QRContent("https://enroll.test/?ref=qr", "ABC234"))
}

func TestGenerateCodeSheetPDF(t *testing.T) {
	company := &entity.Company{ID: "c1", Name: "Acme Corp"}
	program := &entity.Program{ID: "p1", Code: entity.ProgramGLP1, Name: "GLP-1 Medication Program"}
	batch := &entity.CodeBatch{ID: "0f1e2d3c-aaaa-bbbb-cccc-000000000001", CompanyID: "c1", Quantity: 4, CreatedAt: time.Now()}
	var list []*entity.EnrollmentCode
	for i := 0; i < 4; i++ {
		list = append(list, &entity.EnrollmentCode{ID: fmt.Sprint(i), Code: fmt.Sprintf("CODE%02d", i), Status: entity.CodeStatusActive})
	}

	out, err := pdf.NewMarotoPDFGenerator().GenerateCodeSheetPDF(context.Background(), company, program, batch, list, "https://enroll.test")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateCodeSheetPDF_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pdf.NewMarotoPDFGenerator().GenerateCodeSheetPDF(ctx, &entity.Company{}, &entity.Program{}, &entity.CodeBatch{}, nil, "")
	require.ErrorIs(t, err, context.Canceled)
}
