// Package identifier genera los tokens legibles del programa: códigos de inscripción,
// identificadores eMed, de kit y de receta, y contraseñas temporales.
//
// Todos son alfanuméricos base36 en mayúsculas con un prefijo fijo. La unicidad la
// garantiza la restricción UNIQUE de la base de datos, no el generador.
package identifier

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// maxUnbiased mayor múltiplo de 36 que cabe en un byte; los bytes >= 252 se descartan.
const maxUnbiased = 256 - 256%len(alphabet)

// maxRejectRounds lecturas extra toleradas antes de dar la fuente por inservible.
const maxRejectRounds = 64

// Longitudes de la parte aleatoria de cada token.
const (
	CodeRandomLen     = 6
	EmedRandomLen     = 4
	KitRandomLen      = 8
	RxRandomLen       = 4
	PasswordRandomLen = 6
)

// Generator produce tokens a partir de una fuente de aleatoriedad inyectable.
type Generator struct {
	src io.Reader
}

// NewGenerator usa crypto/rand.
func NewGenerator() *Generator {
	return &Generator{src: rand.Reader}
}

// NewGeneratorFrom usa la fuente dada (tests deterministas).
func NewGeneratorFrom(src io.Reader) *Generator {
	return &Generator{src: src}
}

// Random devuelve n caracteres base36 en mayúsculas, uniformes por muestreo con rechazo.
func (g *Generator) Random(n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for round := 0; len(out) < n; round++ {
		if round > maxRejectRounds {
			return "", fmt.Errorf("identifier: la fuente solo produce bytes descartables")
		}
		need := buf[:n-len(out)]
		if _, err := io.ReadFull(g.src, need); err != nil {
			return "", fmt.Errorf("identifier: leer aleatoriedad: %w", err)
		}
		for _, b := range need {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
		}
	}
	return string(out), nil
}

// EnrollmentCode: {PFX}-{PROGRAM}-{6}.
func (g *Generator) EnrollmentCode(companyName, programCode string) (string, error) {
	r, err := g.Random(CodeRandomLen)
	if err != nil {
		return "", err
	}
	return CompanyPrefix(companyName) + "-" + programCode + "-" + r, nil
}

// EmedIdentifier: eMED-{company_id}-{4}.
func (g *Generator) EmedIdentifier(companyID string) (string, error) {
	r, err := g.Random(EmedRandomLen)
	if err != nil {
		return "", err
	}
	return "eMED-" + companyID + "-" + r, nil
}

// KitIdentifier: KIT-{8}.
func (g *Generator) KitIdentifier() (string, error) {
	r, err := g.Random(KitRandomLen)
	if err != nil {
		return "", err
	}
	return "KIT-" + r, nil
}

// RxIdentifier: RX-{company_id}-{user_id}-{4}.
func (g *Generator) RxIdentifier(companyID, userID string) (string, error) {
	r, err := g.Random(RxRandomLen)
	if err != nil {
		return "", err
	}
	return "RX-" + companyID + "-" + userID + "-" + r, nil
}

// TempPassword: eMed{6}.
func (g *Generator) TempPassword() (string, error) {
	r, err := g.Random(PasswordRandomLen)
	if err != nil {
		return "", err
	}
	return "eMed" + r, nil
}

// CompanyPrefix toma los 3 primeros alfanuméricos del nombre sin acentos, en mayúsculas,
// completando con X si el nombre es más corto. "Ñandú Ltda" -> "NAN".
func CompanyPrefix(name string) string {
	var b strings.Builder
	for _, r := range Fold(name) {
		if b.Len() == 3 {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	for b.Len() < 3 {
		b.WriteByte('X')
	}
	return b.String()
}

// Slug devuelve el nombre en minúsculas, sin acentos y solo con [a-z0-9].
func Slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(Fold(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Fold elimina las marcas diacríticas (NFD + quitar Mn + NFC).
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
