package service

const (
	MaxMonthlyContribution = 1_000_000_000.0
	MaxAnnualRatePercent   = 1000.0 // 1000% per year
	MinYears               = 1
	MaxYears               = 100

	// DefaultStandardRatePercent is the baseline used by comparison mode.
	DefaultStandardRatePercent = 8.0

	MovingAverageShort = 50
	MovingAverageLong  = 200

	// DashboardPreviewRows is how many recent bars the dashboard table shows.
	DashboardPreviewRows = 5
)
