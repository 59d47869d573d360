package utils

// MaskSecret redacts s for log output. Long secrets keep a short prefix so
// two session ids can still be told apart.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) < 8 {
		return "******"
	}
	return s[:4] + "******"
}
