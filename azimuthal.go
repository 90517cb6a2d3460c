package foam

import "fmt"

// AzimuthalGeometry carries the geometric parameters needed to integrate an
// assembled image.
type AzimuthalGeometry struct {
	CenterX, CenterY float64 // pixels
	PixelSize float64 // meters
	SampleDistance float64 // meters
	Rotation1 float64
	Rotation2 float64
	Rotation3 float64
	PhotonEnergy float64 // eV
}

// IntegrationMethod identifies the integration algorithm tag passed through
// to the azimuthal integrator collaborator.
type IntegrationMethod string

const (
	IntegrationBBox IntegrationMethod = "BBox"
	IntegrationSplitPixel IntegrationMethod = "csr_ocl"
	IntegrationNoSplit IntegrationMethod = "no_split"
)

// Integrator is the stateless azimuthal-integration collaborator boundary.
type Integrator interface {
	Integrate(image *Frame, geom AzimuthalGeometry, method IntegrationMethod, integPoints int, integRange AcceptanceRange) (q, intensity []float64, err error)
}

// AzimuthalParams bundles the per-train configuration consumed by the AI
// processor.
type AzimuthalParams struct {
	Geometry AzimuthalGeometry
	Method IntegrationMethod
	IntegPoints int
	IntegRange AcceptanceRange
	AUCRange AcceptanceRange
	FOMIntegRange AcceptanceRange
	Normalizer NormalizerKind
}

// ComputeAI delegates to the integrator and derives ai.fom as the AUC over
// fom_integ_range after applying the selected normalizer.
func ComputeAI(integrator Integrator, image *Frame, params AzimuthalParams, item *DataItem) error {
	if image == nil {
		return NewProcessingError("azimuthal_integration", "no masked_mean image available", nil)
	}

	q, intensity, err := integrator.Integrate(image, params.Geometry, params.Method, params.IntegPoints, params.IntegRange)
	if err != nil {
		return NewProcessingError("azimuthal_integration", "integrator failed", err)
	}

	item.SetVFOM(q, intensity, "q (1/A)", "I (arb. u.)")

	normalized, _, err := Normalize(params.Normalizer, intensity, NormalizerInputs{X: q, VFOM: intensity, AUCRange: params.AUCRange}, "")
	if err != nil {
		return fmt.Errorf("ai fom normalization: %w", err)
	}

	item.FOM = AUC(q, normalized, params.FOMIntegRange.Low, params.FOMIntegRange.High)
	return nil
}
