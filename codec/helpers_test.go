package codec

import (
	"bytes"
	"encoding/binary"
)

type testChunk struct {
	id   string
	data []byte
}

// buildWAV assembles a RIFF/WAVE file from raw chunks, padding odd sized
// chunks the way RIFF requires.
func buildWAV(chunks ...testChunk) []byte {
	var body bytes.Buffer

	body.WriteString("WAVE")

	for _, c := range chunks {
		body.WriteString(c.id)
		binary.Write(&body, binary.LittleEndian, uint32(len(c.data)))
		body.Write(c.data)

		if len(c.data)%2 == 1 {
			body.WriteByte(0)
		}
	}

	var out bytes.Buffer

	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())

	return out.Bytes()
}

func fmtChunk(formatTag, numChans uint16, sampleRate uint32, bitDepth uint16) testChunk {
	blockAlign := numChans * ((bitDepth + 7) / 8)

	var b bytes.Buffer
	binary.Write(&b, binary.LittleEndian, formatTag)
	binary.Write(&b, binary.LittleEndian, numChans)
	binary.Write(&b, binary.LittleEndian, sampleRate)
	binary.Write(&b, binary.LittleEndian, sampleRate*uint32(blockAlign))
	binary.Write(&b, binary.LittleEndian, blockAlign)
	binary.Write(&b, binary.LittleEndian, bitDepth)

	return testChunk{id: "fmt ", data: b.Bytes()}
}

func extensibleFmtChunk(subFormat, numChans uint16, sampleRate uint32, bitDepth uint16) testChunk {
	c := fmtChunk(wavFormatExtensible, numChans, sampleRate, bitDepth)

	var b bytes.Buffer
	b.Write(c.data)
	binary.Write(&b, binary.LittleEndian, uint16(22))
	binary.Write(&b, binary.LittleEndian, bitDepth)
	binary.Write(&b, binary.LittleEndian, uint32(0x3))
	binary.Write(&b, binary.LittleEndian, subFormat)
	b.Write([]byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71})

	return testChunk{id: "fmt ", data: b.Bytes()}
}

func leBytes(values ...any) []byte {
	var b bytes.Buffer
	for _, v := range values {
		binary.Write(&b, binary.LittleEndian, v)
	}

	return b.Bytes()
}

func float32ApproxEqual(a, b, epsilon float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}

	return d <= epsilon
}
