package codec

const muLawBias = 0x84

// Expansion tables for the two G.711 companding laws, indexed by the encoded
// byte.
var (
	muLawTable = buildExpansionTable(expandMuLaw)
	aLawTable  = buildExpansionTable(expandALaw)
)

func buildExpansionTable(expand func(byte) int16) [256]int16 {
	var table [256]int16
	for i := range table {
		table[i] = expand(byte(i))
	}

	return table
}

func expandMuLaw(sample byte) int16 {
	value := ^sample
	sign := value & 0x80
	exponent := (value >> 4) & 0x07
	mantissa := value & 0x0F

	decoded := ((int(mantissa)<<3)+muLawBias)<<exponent - muLawBias
	if sign != 0 {
		decoded = -decoded
	}

	return int16(decoded)
}

func expandALaw(sample byte) int16 {
	value := sample ^ 0x55
	sign := value & 0x80
	exponent := (value >> 4) & 0x07
	mantissa := value & 0x0F

	decoded := int(mantissa) << 4
	switch exponent {
	case 0:
		decoded += 8
	case 1:
		decoded += 0x108
	default:
		decoded += 0x108
		decoded <<= exponent - 1
	}

	if sign == 0 {
		decoded = -decoded
	}

	return int16(decoded)
}
