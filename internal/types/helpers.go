package types

// StringPtr returns a pointer to the given string.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to the given bool.
func BoolPtr(b bool) *bool {
	return &b
}

// Float64Ptr returns a pointer to the given float64.
func Float64Ptr(f float64) *float64 {
	return &f
}

func cloneBoolPtr(p *bool) *bool {
	if p == nil {
		return nil
	}
	return BoolPtr(*p)
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return Float64Ptr(*p)
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneRaw(raw []byte) []byte {
	if raw == nil {
		return nil
	}
	return append([]byte(nil), raw...)
}
