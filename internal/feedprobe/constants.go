package feedprobe

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	DefaultSectionLimit  = 6
	MaxScore             = 100
)
