package attachment

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// StickerKind names the visual effects Messages can bake into a sticker.
type StickerKind int

const (
	StickerNormal StickerKind = iota
	StickerOutline
	StickerComic
	StickerPuffy
	StickerShiny
	StickerOther
)

// StickerEffect is a decoded effect tag. Name carries the raw effect string
// when Kind is StickerOther.
type StickerEffect struct {
	Kind StickerKind
	Name string
}

func (e StickerEffect) String() string {
	switch e.Kind {
	case StickerOutline:
		return "Outline"
	case StickerComic:
		return "Comic"
	case StickerPuffy:
		return "Puffy"
	case StickerShiny:
		return "Shiny"
	case StickerOther:
		return e.Name
	default:
		return "Normal"
	}
}

// effectMarker precedes the effect name inside a sticker image's XMP
// metadata.
var effectMarker = []byte(`stickerEffect:type="`)

// effectTerminator closes the attribute.
var effectTerminator = []byte(`"/>`)

// DecodeStickerEffect scans raw sticker image bytes for the embedded effect
// tag. No tag means an unmodified sticker. A tag that never closes decodes as
// Other("Unknown") rather than an error; the sticker itself is still usable.
func DecodeStickerEffect(data []byte) StickerEffect {
	start := bytes.Index(data, effectMarker)
	if start < 0 {
		return StickerEffect{Kind: StickerNormal}
	}
	rest := data[start+len(effectMarker):]

	end := bytes.Index(rest, effectTerminator)
	if end < 0 {
		return StickerEffect{Kind: StickerOther, Name: "Unknown"}
	}

	name := strings.ToValidUTF8(string(rest[:end]), string(utf8.RuneError))
	switch name {
	case "stroke":
		return StickerEffect{Kind: StickerOutline}
	case "comic":
		return StickerEffect{Kind: StickerComic}
	case "puffy":
		return StickerEffect{Kind: StickerPuffy}
	case "iridescent":
		return StickerEffect{Kind: StickerShiny}
	default:
		return StickerEffect{Kind: StickerOther, Name: name}
	}
}
