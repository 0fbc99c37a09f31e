package battery

// battery_const.go
//
// Parameters and reference tables of the built-in tests. The tables come from
// NIST SP 800-22 rev1a; changing them changes every reported p-value.

// ============================================================================
// 1. BINARY MATRIX RANK
// ============================================================================

const (
	// DefaultMatrixSize is the side of the square bit matrices (32x32 = 1024 bits per block).
	DefaultMatrixSize = 32

	// MaxMatrixSize bounds the matrix side so that a row fits in a uint64.
	MaxMatrixSize = 64

	// rankProductTerms is the number of factors of the full-rank probability product.
	rankProductTerms = 49
)

// ============================================================================
// 2. LINEAR COMPLEXITY
// ============================================================================

const (
	// DefaultLinearComplexityBlock is the number of bits per Berlekamp-Massey block.
	DefaultLinearComplexityBlock = 1000

	// linearComplexityMinBlocks is the minimum number of full blocks.
	linearComplexityMinBlocks = 2

	// linearComplexityDOF is the chi-square degrees of freedom (7 bins).
	linearComplexityDOF = 6
)

// linearComplexityBounds are the inner edges of the 7 deviation bins.
var linearComplexityBounds = []float64{-2.5, -1.5, -0.5, 0.5, 1.5, 2.5}

// linearComplexityProbabilities are the theoretical bin probabilities.
var linearComplexityProbabilities = []float64{0.010417, 0.03125, 0.125, 0.5, 0.25, 0.0625, 0.020833}

// ============================================================================
// 3. COMPRESSION (MAURER'S UNIVERSAL TEST)
// ============================================================================

// compressionRow is one row of the Maurer parameter table.
type compressionRow struct {
	N             int     // minimum number of bits
	L             int     // bits per block
	Q             int     // initialization blocks
	ExpectedValue float64 // expected f_n for a random sequence
	Variance      float64 // variance of log2 gaps
}

var compressionTable = []compressionRow{
	{N: 387840, L: 6, Q: 640, ExpectedValue: 5.2177052, Variance: 2.954},
	{N: 904960, L: 7, Q: 1280, ExpectedValue: 6.1962507, Variance: 3.125},
	{N: 2068480, L: 8, Q: 2560, ExpectedValue: 7.1836656, Variance: 3.238},
	{N: 4654080, L: 9, Q: 5120, ExpectedValue: 8.1764248, Variance: 3.311},
	{N: 10342400, L: 10, Q: 10240, ExpectedValue: 9.1723243, Variance: 3.35},
	{N: 22753280, L: 11, Q: 20480, ExpectedValue: 10.170032, Variance: 3.384},
	{N: 49643520, L: 12, Q: 40960, ExpectedValue: 11.168765, Variance: 3.401},
	{N: 107560960, L: 13, Q: 81920, ExpectedValue: 12.168070, Variance: 3.410},
	{N: 231669760, L: 14, Q: 163840, ExpectedValue: 13.167693, Variance: 3.416},
	{N: 496435200, L: 15, Q: 327680, ExpectedValue: 14.167488, Variance: 3.419},
	{N: 1059061760, L: 16, Q: 655360, ExpectedValue: 15.167379, Variance: 3.421},
}

// ============================================================================
// 4. SPECTRAL (DFT)
// ============================================================================

const (
	// spectralThresholdAlpha sets the peak height threshold tau = sqrt(ln(1/alpha) * n).
	spectralThresholdAlpha = 0.05

	// spectralPeakFraction is the expected fraction of peaks below tau.
	spectralPeakFraction = 0.95
)
