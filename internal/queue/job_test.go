package queue

import (
	"testing"
	"time"
)

func TestNewExtractionJob(t *testing.T) {
	t.Parallel()

	job := NewExtractionJob("alice@example.com", "Alice", "we should ship friday")

	if job.Type != JobTypeExtraction {
		t.Errorf("Expected type %q, got %q", JobTypeExtraction, job.Type)
	}
	if job.RequestedBy != "alice@example.com" || job.RequestedByName != "Alice" {
		t.Errorf("Requester not carried on job")
	}
	if job.Transcript != "we should ship friday" {
		t.Errorf("Transcript not carried on job")
	}
	if job.MaxRetries != 3 || job.RetryCount != 0 {
		t.Errorf("Expected fresh retry counters, got %d/%d", job.RetryCount, job.MaxRetries)
	}
	if job.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Errorf("Expected generated job id")
	}
}

func TestJob_ShouldProcess(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name      string
		notBefore *time.Time
		notAfter  *time.Time
		want      bool
	}{
		{"no constraints", nil, nil, true},
		{"not before in past", &past, nil, true},
		{"not before in future", &future, nil, false},
		{"not after in future", nil, &future, true},
		{"not after in past", nil, &past, false},
		{"inside window", &past, &future, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := NewExtractionJob("a@example.com", "A", "text")
			job.NotBefore = tt.notBefore
			job.NotAfter = tt.notAfter
			if got := job.ShouldProcess(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestJob_IsExpired(t *testing.T) {
	t.Parallel()

	job := NewExtractionJob("a@example.com", "A", "text")
	if job.IsExpired() {
		t.Errorf("Job without NotAfter should never expire")
	}

	past := time.Now().Add(-time.Minute)
	job.NotAfter = &past
	if !job.IsExpired() {
		t.Errorf("Job past its NotAfter should be expired")
	}
}

func TestJob_Retry(t *testing.T) {
	t.Parallel()

	job := NewExtractionJob("a@example.com", "A", "text")
	job.MaxRetries = 2

	if !job.CanRetry() {
		t.Fatalf("Fresh job should be retryable")
	}
	job.IncrementRetry()
	if !job.CanRetry() {
		t.Fatalf("Job with 1 of 2 retries should be retryable")
	}
	job.IncrementRetry()
	if job.CanRetry() {
		t.Fatalf("Job at max retries should not be retryable")
	}
}
