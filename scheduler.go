package foam

import (
	"log"
	"sync/atomic"
)

// Publisher hands a finished ProcessedData to visualization collaborators,
// out of scope; the scheduler only needs somewhere to send it.
type Publisher interface {
	Publish(bundle *CorrelatedBundle)
}

// PublisherFunc adapts a plain function to Publisher.
type PublisherFunc func(bundle *CorrelatedBundle)

func (f PublisherFunc) Publish(bundle *CorrelatedBundle) { f(bundle) }

// Telemetry is the rolling counter set tracking drops, unknown parameters,
// and processing errors across the pipeline's run.
type Telemetry struct {
	Drops int64
	UnknownParameters int64
	ProcessingErrors int64
}

func (t *Telemetry) recordDrop(n int) { atomic.AddInt64(&t.Drops, int64(n)) }
func (t *Telemetry) recordUnknownParameter() { atomic.AddInt64(&t.UnknownParameters, 1) }
func (t *Telemetry) recordProcessingError() { atomic.AddInt64(&t.ProcessingErrors, 1) }

// Snapshot reads every counter atomically; the three reads are separate,
// not one joint point-in-time snapshot.
func (t *Telemetry) Snapshot() (drops, unknownParameters, processingErrors int64) {
	return atomic.LoadInt64(&t.Drops), atomic.LoadInt64(&t.UnknownParameters), atomic.LoadInt64(&t.ProcessingErrors)
}

// Scheduler is the single-producer/single-consumer conveyor: one goroutine
// feeds raw packets to the correlator; Run drives the processor chain over
// whatever the correlator emits, strictly in train-id order, and hands the
// result to the publisher. Correlated bundles are delivered in strict
// train-id order because TrainCorrelator.Correlate itself only ever emits
// in ascending order.
type Scheduler struct {
	Correlator *TrainCorrelator
	Chain *CompositeProcessor
	Publisher Publisher
	Telemetry *Telemetry

	SourceType string
}

// NewScheduler wires a correlator, a processor chain, and a publisher into
// one conveyor.
func NewScheduler(correlator *TrainCorrelator, chain *CompositeProcessor, publisher Publisher) *Scheduler {
	return &Scheduler{
		Correlator: correlator,
		Chain: chain,
		Publisher: publisher,
		Telemetry: &Telemetry{},
		SourceType: "train",
	}
}

// updateConfig propagates a fresh config snapshot to the entire processor
// chain, called once per train by Ingest before Process runs. Configuration
// reads happen here so they stay cheap and off the hot processing path.
func (s *Scheduler) updateConfig(cfg ConfigSnapshot) error {
	if err := s.Chain.Update(cfg); err != nil {
		if upe, ok := err.(*UnknownParameterError); ok {
			s.Telemetry.recordUnknownParameter()
			log.Printf("update: unknown parameter: %v", upe)
		}
		return err
	}
	return nil
}

// Ingest feeds one raw packet through correlation and, when it completes a
// train, runs the processor chain over it and publishes the result. Dropped
// ids are reported via Telemetry. A fatal error (malformed input, unknown
// parameter, fatal processing error) is returned for the caller to act on:
// malformed input exits the pipeline since the raw feed itself is
// inconsistent.
func (s *Scheduler) Ingest(packet RawTrainBundle, cfg ConfigSnapshot) error {
	bundle, dropped, err := s.Correlator.Correlate(packet, s.SourceType)
	if err != nil {
		return err
	}
	if len(dropped) > 0 {
		s.Telemetry.recordDrop(len(dropped))
		log.Printf("dropped %d incomplete train(s): %v", len(dropped), dropped)
	}
	if bundle == nil {
		return nil
	}

	if err := s.updateConfig(cfg); err != nil {
		return err
	}

	if err := s.Chain.Process(bundle); err != nil {
		switch e := err.(type) {
			case *UnknownParameterError:
				s.Telemetry.recordUnknownParameter()
				return e
			case *FatalProcessingError:
				s.Telemetry.recordProcessingError()
				return e
			default:
				s.Telemetry.recordProcessingError()
				log.Printf("train %d: %v", bundle.TrainID, err)
				return nil
		}
	}

	s.Publisher.Publish(bundle)
	return nil
}

// Run drains packets from a channel until it is closed, feeding each one
// through Ingest with the supplied per-train config snapshot factory.
// Shutting down closes the input channel, after which in-flight trains
// finish and Run returns.
func (s *Scheduler) Run(packets <-chan RawTrainBundle, configFor func() ConfigSnapshot) error {
	for packet := range packets {
		if err := s.Ingest(packet, configFor()); err != nil {
			return err
		}
	}
	return nil
}
