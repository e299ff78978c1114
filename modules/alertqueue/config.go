package alertqueue

type Config struct {
	LenientCleanup bool `env:"QUEUE_LENIENT_CLEANUP" envDefault:"false"` // LenientCleanup makes housekeeping failures non-fatal for the build run.
}
