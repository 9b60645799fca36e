package clipboard

// DetectFor exposes detection with a fake PATH lookup.
var DetectFor = detect
