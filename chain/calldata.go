package chain

// replacementMarker is the mask byte that marks a position the counterparty
// may substitute. Any other mask value pins the byte.
const replacementMarker = 0xff

// MergeCalldata merges replacement into target under mask. All three buffers
// must have equal length. Where the mask byte is set the output byte comes
// from replacement; everywhere else it comes from target, and replacement is
// required to agree byte-for-byte. A disagreement on a pinned byte means the
// counterparty tried to alter a part of the call the maker did not open up,
// and is reported with its offset rather than tolerated.
func MergeCalldata(target, replacement, mask []byte) ([]byte, error) {
	if len(replacement) != len(target) {
		return nil, &InvalidFieldError{Field: "calldata", Reason: "replacement length differs from target"}
	}
	if len(mask) != len(target) {
		return nil, &InvalidFieldError{Field: "replacementPattern", Reason: "mask length differs from target"}
	}

	merged := make([]byte, len(target))
	for i := range target {
		if mask[i] != 0 {
			merged[i] = replacement[i]
			continue
		}
		if target[i] != replacement[i] {
			return nil, &CalldataMismatchError{Offset: i}
		}
		merged[i] = target[i]
	}
	return merged, nil
}

// guardedReplace copies dest and overwrites the bytes its mask opens up with
// the corresponding bytes of source. It is the permissive half of the merge,
// mirroring the substitution the exchange contract performs before comparing
// both sides' calldata. An empty mask replaces nothing.
func guardedReplace(dest, source, mask []byte) []byte {
	out := make([]byte, len(dest))
	copy(out, dest)
	for i := range mask {
		if i >= len(out) || i >= len(source) {
			break
		}
		if mask[i] != 0 {
			out[i] = source[i]
		}
	}
	return out
}
