package sops

import "strings"

// MetadataKey is the top-level key SOPS writes its metadata under.
const MetadataKey = "sops"

// EncryptedValuePrefix marks a scalar SOPS encrypted in place, e.g. `ENC[AES256_GCM,data:...]`.
const EncryptedValuePrefix = "ENC["

func IsEncryptedValue(value string) bool {
	return strings.HasPrefix(value, EncryptedValuePrefix) && strings.HasSuffix(value, "]")
}
