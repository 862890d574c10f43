package shipping

// Dimensions are the shipping-relevant measurements of a single product unit.
// Weight in kilograms, lengths in centimeters.
type Dimensions struct {
	WeightKg float64
	HeightCm float64
	WidthCm  float64
	LengthCm float64
}

// IsZero reports whether no dimension is set
func (d Dimensions) IsZero() bool {
	return d == Dimensions{}
}

// withDefaults fills each unset measurement from the store defaults. The
// fallback is per measurement, so a product with only its weight registered
// still ships with plausible box dimensions.
func (d Dimensions) withDefaults(defaults Dimensions) Dimensions {
	if d.WeightKg <= 0 {
		d.WeightKg = defaults.WeightKg
	}
	if d.HeightCm <= 0 {
		d.HeightCm = defaults.HeightCm
	}
	if d.WidthCm <= 0 {
		d.WidthCm = defaults.WidthCm
	}
	if d.LengthCm <= 0 {
		d.LengthCm = defaults.LengthCm
	}
	return d
}

// PackageItem is one cart line entering dimension aggregation
type PackageItem struct {
	Dimensions Dimensions
	Quantity   int
}

// AggregatePackage combines cart items into a single shipping package:
// total weight and height accumulate per unit (packages stacked), while
// width and length take the maximum across items (packages side by side).
// This is a deliberate simplification, not a bin-packing solution.
func AggregatePackage(items []PackageItem, defaults Dimensions) Dimensions {
	var pkg Dimensions
	for _, item := range items {
		dims := item.Dimensions.withDefaults(defaults)
		qty := float64(item.Quantity)
		pkg.WeightKg += dims.WeightKg * qty
		pkg.HeightCm += dims.HeightCm * qty
		if dims.WidthCm > pkg.WidthCm {
			pkg.WidthCm = dims.WidthCm
		}
		if dims.LengthCm > pkg.LengthCm {
			pkg.LengthCm = dims.LengthCm
		}
	}
	return pkg
}
