package tx

const (
	// CurrentVersion is the transaction version written by the builder.
	CurrentVersion int32 = 2

	// MaxVersion is the highest version the builder accepts.
	MaxVersion int32 = 2

	// DefaultNLockTime is the nLockTime of a new transaction.
	DefaultNLockTime uint32 = 0

	// MaxBlockSize bounds the serialized transaction size.
	MaxBlockSize = 1_000_000

	// DustAmount is the minimum economically spendable output value.
	DustAmount uint64 = 546

	// FeeSecurityMargin scales the estimated fee into the accepted
	// [estimate/margin, estimate*margin] band at serialization time.
	FeeSecurityMargin = 150

	// MaxMoney is the maximum number of satoshis in circulation.
	MaxMoney uint64 = 21_000_000 * 1e8

	// NLockTimeBlockHeightLimit separates block-height locktimes
	// (below) from timestamp locktimes (at or above).
	NLockTimeBlockHeightLimit uint32 = 500_000_000

	// NLockTimeMaxValue is the largest representable nLockTime.
	NLockTimeMaxValue int64 = 0xffffffff

	// DefaultFeePerKb is the fee rate used when none is configured,
	// in satoshis per 1000 bytes.
	DefaultFeePerKb int64 = 100_000

	// ChangeOutputMaxSize is a fixed size allowance, in bytes, for one
	// change output. It exceeds the 34-byte serialized size of a P2PKH
	// change output (value, script length prefix, script).
	ChangeOutputMaxSize = 62

	// MaximumExtraSize is the worst-case framing overhead of a
	// transaction: version, the input and output count varints at their
	// widest, and nLockTime.
	MaximumExtraSize = 4 + 9 + 9 + 4

	// DefaultSequenceNumber is the final sequence number, which leaves
	// nLockTime disabled for the input.
	DefaultSequenceNumber uint32 = 0xffffffff

	// DefaultLockTimeSequenceNumber enables nLockTime for an input.
	DefaultLockTimeSequenceNumber uint32 = 0xffffffff - 1

	// MaxZceInputs bounds the inputs of a ZCE-secured payment.
	MaxZceInputs = 65_536

	// maxCoinbaseScriptSize bounds a coinbase input script.
	minCoinbaseScriptSize = 2
	maxCoinbaseScriptSize = 100
)
