package codec

// Kind identifies the shape of a value as seen by the codec.
type Kind uint8

const (
	KindBool Kind = iota
	KindI8
	KindI16
	KindI32
	KindI64
	KindU8
	KindU16
	KindU32
	KindU64
	KindF32
	KindF64
	KindChar
	KindString
	KindBytes
	KindOption
	KindUnit
	KindUnitStruct
	KindNewtypeStruct
	KindSeq
	KindTuple
	KindTupleStruct
	KindMap
	KindStruct
	KindEnum
	KindUnitVariant
	KindNewtypeVariant
	KindTupleVariant
	KindStructVariant
)

var kindNames = [...]string{
	KindBool:           "bool",
	KindI8:             "i8",
	KindI16:            "i16",
	KindI32:            "i32",
	KindI64:            "i64",
	KindU8:             "u8",
	KindU16:            "u16",
	KindU32:            "u32",
	KindU64:            "u64",
	KindF32:            "f32",
	KindF64:            "f64",
	KindChar:           "char",
	KindString:         "string",
	KindBytes:          "bytes",
	KindOption:         "option",
	KindUnit:           "unit",
	KindUnitStruct:     "unit_struct",
	KindNewtypeStruct:  "newtype_struct",
	KindSeq:            "seq",
	KindTuple:          "tuple",
	KindTupleStruct:    "tuple_struct",
	KindMap:            "map",
	KindStruct:         "struct",
	KindEnum:           "enum",
	KindUnitVariant:    "unit_variant",
	KindNewtypeVariant: "newtype_variant",
	KindTupleVariant:   "tuple_variant",
	KindStructVariant:  "struct_variant",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsPrimitive reports whether k is a fixed-width scalar.
func (k Kind) IsPrimitive() bool {
	return k <= KindF64
}

// IsVariant reports whether k is one of the enum variant forms.
func (k Kind) IsVariant() bool {
	return k >= KindUnitVariant && k <= KindStructVariant
}

// Width returns the encoded size of a fixed-width scalar, or 0.
func (k Kind) Width() int {
	switch k {
	case KindBool, KindI8, KindU8:
		return 1
	case KindI16, KindU16:
		return 2
	case KindI32, KindU32, KindF32:
		return 4
	case KindI64, KindU64, KindF64:
		return 8
	default:
		return 0
	}
}
