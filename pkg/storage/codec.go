package storage

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Wire tags for packed values. Text values reuse their byte length as the
// tag, so any non-negative tag denotes text of that many bytes.
const (
	tagBool  int32 = -1
	tagInt   int32 = -2
	tagUint  int32 = -3
	tagFloat int32 = -4
)

// packValue appends the wire encoding of v to dst and returns the result.
func packValue(dst []byte, v Value) []byte {
	var tagBuf [4]byte
	switch v.Kind {
	case KindBool:
		binary.BigEndian.PutUint32(tagBuf[:], uint32(tagBool))
		dst = append(dst, tagBuf[:]...)
		if v.b {
			dst = append(dst, 1)
		} else {
			dst = append(dst, 0)
		}
	case KindInt:
		binary.BigEndian.PutUint32(tagBuf[:], uint32(tagInt))
		dst = append(dst, tagBuf[:]...)
		var payload [4]byte
		binary.BigEndian.PutUint32(payload[:], uint32(v.i))
		dst = append(dst, payload[:]...)
	case KindUint:
		binary.BigEndian.PutUint32(tagBuf[:], uint32(tagUint))
		dst = append(dst, tagBuf[:]...)
		var payload [4]byte
		binary.BigEndian.PutUint32(payload[:], v.u)
		dst = append(dst, payload[:]...)
	case KindFloat:
		binary.BigEndian.PutUint32(tagBuf[:], uint32(tagFloat))
		dst = append(dst, tagBuf[:]...)
		var payload [4]byte
		binary.BigEndian.PutUint32(payload[:], math.Float32bits(v.f))
		dst = append(dst, payload[:]...)
	case KindText:
		text := []byte(v.s)
		binary.BigEndian.PutUint32(tagBuf[:], uint32(int32(len(text))))
		dst = append(dst, tagBuf[:]...)
		dst = append(dst, text...)
	}
	return dst
}

// unpackValue decodes a single value starting at b[0]. It returns the value
// and the number of bytes consumed.
func unpackValue(b []byte) (Value, int, error) {
	if len(b) < 4 {
		return Value{}, 0, fmt.Errorf("%w: truncated value tag", ErrCorruptTag)
	}
	tag := int32(binary.BigEndian.Uint32(b[:4]))
	switch {
	case tag == tagBool:
		if len(b) < 5 {
			return Value{}, 0, fmt.Errorf("%w: truncated bool payload", ErrCorruptTag)
		}
		return BoolValue(b[4] != 0), 5, nil
	case tag == tagInt:
		if len(b) < 8 {
			return Value{}, 0, fmt.Errorf("%w: truncated int payload", ErrCorruptTag)
		}
		return IntValue(int32(binary.BigEndian.Uint32(b[4:8]))), 8, nil
	case tag == tagUint:
		if len(b) < 8 {
			return Value{}, 0, fmt.Errorf("%w: truncated uint payload", ErrCorruptTag)
		}
		return UintValue(binary.BigEndian.Uint32(b[4:8])), 8, nil
	case tag == tagFloat:
		if len(b) < 8 {
			return Value{}, 0, fmt.Errorf("%w: truncated float payload", ErrCorruptTag)
		}
		return FloatValue(math.Float32frombits(binary.BigEndian.Uint32(b[4:8]))), 8, nil
	case tag >= 0:
		n := int(tag)
		if len(b) < 4+n {
			return Value{}, 0, fmt.Errorf("%w: truncated text payload", ErrCorruptTag)
		}
		return TextValue(string(b[4 : 4+n])), 4 + n, nil
	default:
		return Value{}, 0, fmt.Errorf("%w: tag %d", ErrCorruptTag, tag)
	}
}

// packKey appends the wire encoding of a property key (4-byte length prefix
// plus UTF-8 bytes) to dst.
func packKey(dst []byte, key string) []byte {
	var lenBuf [4]byte
	kb := []byte(key)
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(kb)))
	dst = append(dst, lenBuf[:]...)
	dst = append(dst, kb...)
	return dst
}

func unpackKey(b []byte) (string, int, error) {
	if len(b) < 4 {
		return "", 0, fmt.Errorf("%w: truncated key length", ErrCorruptTag)
	}
	n := int(binary.BigEndian.Uint32(b[:4]))
	if n < 0 || len(b) < 4+n {
		return "", 0, fmt.Errorf("%w: truncated key bytes", ErrCorruptTag)
	}
	return string(b[4 : 4+n]), 4 + n, nil
}

// packRecord encodes a property map as:
//
//	[4-byte total record length][4-byte property count][(key, value)...]
//
// The total-length field lets callers detect whether an in-place update fits
// the old record, and lets a forward scan skip over the whole record.
func packRecord(props map[string]Value) []byte {
	body := make([]byte, 0, 64)
	for k, v := range props {
		body = packKey(body, k)
		body = packValue(body, v)
	}
	out := make([]byte, 0, 8+len(body))
	var header [8]byte
	binary.BigEndian.PutUint32(header[0:4], uint32(8+len(body)))
	binary.BigEndian.PutUint32(header[4:8], uint32(len(props)))
	out = append(out, header[:]...)
	out = append(out, body...)
	return out
}

// unpackRecord decodes a property record previously produced by packRecord.
func unpackRecord(b []byte) (map[string]Value, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("%w: truncated record header", ErrTruncatedFile)
	}
	total := binary.BigEndian.Uint32(b[0:4])
	count := binary.BigEndian.Uint32(b[4:8])
	if int(total) > len(b) {
		return nil, fmt.Errorf("%w: record claims %d bytes, have %d", ErrTruncatedFile, total, len(b))
	}
	body := b[8:total]
	props := make(map[string]Value, count)
	for i := uint32(0); i < count; i++ {
		key, n, err := unpackKey(body)
		if err != nil {
			return nil, err
		}
		body = body[n:]
		val, n, err := unpackValue(body)
		if err != nil {
			return nil, err
		}
		body = body[n:]
		props[key] = val
	}
	return props, nil
}

// recordLength reads just the total-length prefix of a packed record.
func recordLength(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, fmt.Errorf("%w: truncated record length", ErrTruncatedFile)
	}
	return binary.BigEndian.Uint32(b[:4]), nil
}

func be32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

func putBE32(b []byte, v uint32) {
	binary.BigEndian.PutUint32(b, v)
}
