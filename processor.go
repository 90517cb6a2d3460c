package foam

import "log"

// Processor is the base contract: every leaf processor
// exposes Update (reread configuration from the shared-state collaborator)
// and Process (mutate bundle.Processed).
type Processor interface {
	Name() string
	Update(cfg ConfigSnapshot) error
	Process(bundle *CorrelatedBundle) error
}

// CompositeProcessor runs Update on itself and then each child in
// declaration order; a child may return StopCompositionProcessing to halt
// the remainder of the composite without that being treated as an error.
type CompositeProcessor struct {
	ProcessorName string
	Children []Processor
}

func (c *CompositeProcessor) Name() string { return c.ProcessorName }

// Update reconfigures each child in declaration order, stopping at the first
// UnknownParameterError (fatal, propagates to the caller). A field missing
// from the snapshot because the shared-state connection dropped it is not
// an error at all — each child treats that as "no change" and keeps its
// previously cached value.
func (c *CompositeProcessor) Update(cfg ConfigSnapshot) error {
	for _, child := range c.Children {
		if err := child.Update(cfg); err != nil {
			return err
		}
	}
	return nil
}

// Process runs each child's Process in declaration order, stopping early
// (without error) on StopCompositionProcessing, and treating any other
// error as a ProcessingError that is logged and suppressed for this field
// only.
func (c *CompositeProcessor) Process(bundle *CorrelatedBundle) error {
	for _, child := range c.Children {
		err := child.Process(bundle)
		if err == nil {
			continue
		}
		if err == StopCompositionProcessing {
			return nil
		}

		switch err.(type) {
			case *UnknownParameterError, *FatalProcessingError:
				return err // fatal, surfaces to the operator
			default:
				log.Printf("train %d: %s: %v", bundle.TrainID, child.Name(), err)
				// recoverable: continue with the remaining children
		}
	}
	return nil
}
