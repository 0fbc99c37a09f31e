package battery

import (
	"fmt"
	"strings"

	"randaudit/domain/sample"
	apperrors "randaudit/internal/errors"
)

// Factory builds a fresh test instance. Workers never share instances.
type Factory func() StatisticalTest

// Descriptor describes a registered test.
type Descriptor struct {
	Identifier     string
	Name           string
	SupportedKinds []sample.Kind
	Description    string
	New            Factory
}

// Supports reports whether the test accepts samples of kind k.
func (d Descriptor) Supports(k sample.Kind) bool {
	for _, supported := range d.SupportedKinds {
		if supported == k {
			return true
		}
	}
	return false
}

// KindsString renders the supported kinds for display.
func (d Descriptor) KindsString() string {
	parts := make([]string, len(d.SupportedKinds))
	for i, k := range d.SupportedKinds {
		parts[i] = k.String()
	}
	return strings.Join(parts, ",")
}

// Catalog maps test identifiers to descriptors, in registration order.
// It is populated before any worker starts and only read afterwards.
type Catalog struct {
	order []string
	byID  map[string]Descriptor
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byID: make(map[string]Descriptor)}
}

// Register adds a test. Registering the same identifier twice, or a
// descriptor without factory, is an error.
func (c *Catalog) Register(d Descriptor) error {
	id := strings.TrimSpace(d.Identifier)
	if id == "" {
		return apperrors.InvalidInput("test identifier is empty")
	}
	if d.New == nil {
		return apperrors.InvalidInput(fmt.Sprintf("test %s has no factory", id))
	}
	if d.New() == nil {
		return apperrors.InvalidInput(fmt.Sprintf("test %s factory returned nil", id))
	}
	if _, exists := c.byID[id]; exists {
		return apperrors.InvalidInput(fmt.Sprintf("test %s registered twice", id))
	}
	if d.Name == "" {
		d.Name = id
	}
	d.Identifier = id
	c.order = append(c.order, id)
	c.byID[id] = d
	return nil
}

// MustRegister is Register for process start: a bad registration is a
// programming error and panics.
func (c *Catalog) MustRegister(d Descriptor) {
	if err := c.Register(d); err != nil {
		panic(err)
	}
}

// Resolve looks a test up by identifier. Unknown identifiers fail with NOT_FOUND.
func (c *Catalog) Resolve(identifier string) (Descriptor, error) {
	id := strings.TrimSpace(identifier)
	d, ok := c.byID[id]
	if !ok {
		return Descriptor{}, apperrors.NotFound(fmt.Sprintf("test %q", id))
	}
	return d, nil
}

// All returns every descriptor in registration order.
func (c *Catalog) All() []Descriptor {
	out := make([]Descriptor, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Position returns the registration index of identifier, or -1.
func (c *Catalog) Position(identifier string) int {
	for i, id := range c.order {
		if id == identifier {
			return i
		}
	}
	return -1
}

// Len returns the number of registered tests.
func (c *Catalog) Len() int {
	return len(c.order)
}

var defaultCatalog = newDefaultCatalog()

// Default returns the process-wide catalog holding the built-in tests.
func Default() *Catalog {
	return defaultCatalog
}

func newDefaultCatalog() *Catalog {
	bitOriented := []sample.Kind{sample.KindInteger, sample.KindBitstring}

	c := NewCatalog()
	c.MustRegister(Descriptor{
		Identifier:     "binary_matrix",
		Name:           "Binary rank test",
		SupportedKinds: bitOriented,
		Description:    fmt.Sprintf("GF(2) rank of %dx%d bit matrices", DefaultMatrixSize, DefaultMatrixSize),
		New:            func() StatisticalTest { return NewBinaryRankTest(DefaultMatrixSize) },
	})
	c.MustRegister(Descriptor{
		Identifier:     "chi2",
		Name:           "Chi-square goodness of fit",
		SupportedKinds: bitOriented,
		Description:    "Pearson chi-square against a uniform distribution of observed values",
		New:            func() StatisticalTest { return NewChiSquareTest() },
	})
	c.MustRegister(Descriptor{
		Identifier:     "compression",
		Name:           "Compression test",
		SupportedKinds: bitOriented,
		Description:    fmt.Sprintf("Maurer's universal statistical test (L=%d..%d)", compressionTable[0].L, compressionTable[len(compressionTable)-1].L),
		New:            func() StatisticalTest { return NewCompressionTest() },
	})
	c.MustRegister(Descriptor{
		Identifier:     "linear_complexity",
		Name:           "Linear complexity test",
		SupportedKinds: bitOriented,
		Description:    fmt.Sprintf("Berlekamp-Massey LFSR length over %d-bit blocks", DefaultLinearComplexityBlock),
		New:            func() StatisticalTest { return NewLinearComplexityTest(DefaultLinearComplexityBlock) },
	})
	c.MustRegister(Descriptor{
		Identifier:     "run",
		Name:           "Run test",
		SupportedKinds: bitOriented,
		Description:    "Wald-Wolfowitz runs above/below the median",
		New:            func() StatisticalTest { return NewRunTest() },
	})
	c.MustRegister(Descriptor{
		Identifier:     "serial",
		Name:           "Serial test",
		SupportedKinds: bitOriented,
		Description:    "Chi-square over consecutive value pairs",
		New:            func() StatisticalTest { return NewSerialTest() },
	})
	c.MustRegister(Descriptor{
		Identifier:     "sign",
		Name:           "Sign test",
		SupportedKinds: bitOriented,
		Description:    "Two-sided sign test around the median of distinct values",
		New:            func() StatisticalTest { return NewSignTest() },
	})
	c.MustRegister(Descriptor{
		Identifier:     "spectral",
		Name:           "Spectral test",
		SupportedKinds: bitOriented,
		Description:    "DFT peak count below the 95% threshold",
		New:            func() StatisticalTest { return NewSpectralTest() },
	})
	return c
}
