package core

import "sync"

const AVG_COUNT uint8 = 30

type MetricsState struct {
	mutex              sync.Mutex
	TransferAVGCounter uint8
	MStimes            [AVG_COUNT]float64
	MSavg              float64
	FilesCompleted     int64
	FilesFailed        int64
	BytesTransferred   int64
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{
			MStimes: [AVG_COUNT]float64{0},
		}
	})
	return nil
}

// MetricsFileComplete records a finished transfer. Should be called once per
// file, after processing and caching are done.
func MetricsFileComplete(transferMS float64, bytes int64) {
	if metricsState == nil {
		return
	}
	metricsState.mutex.Lock()
	defer metricsState.mutex.Unlock()

	// Calculate transfer ms average
	metricsState.MStimes[metricsState.TransferAVGCounter] = transferMS
	if metricsState.TransferAVGCounter == AVG_COUNT-1 {
		avg := 0.0
		for i := uint8(0); i < AVG_COUNT; i++ {
			avg += metricsState.MStimes[i]
		}
		metricsState.MSavg = avg / float64(AVG_COUNT)
	}
	metricsState.TransferAVGCounter++
	metricsState.TransferAVGCounter %= AVG_COUNT

	metricsState.FilesCompleted++
	metricsState.BytesTransferred += bytes
}

// MetricsFileFailed records a transfer or processing failure.
func MetricsFileFailed() {
	if metricsState == nil {
		return
	}
	metricsState.mutex.Lock()
	defer metricsState.mutex.Unlock()
	metricsState.FilesFailed++
}

// MetricsSnapshot returns a copy of the current counters.
func MetricsSnapshot() (completed, failed, bytes int64, avgMS float64) {
	if metricsState == nil {
		return 0, 0, 0, 0
	}
	metricsState.mutex.Lock()
	defer metricsState.mutex.Unlock()
	return metricsState.FilesCompleted, metricsState.FilesFailed,
		metricsState.BytesTransferred, metricsState.MSavg
}
