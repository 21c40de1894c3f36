package attachment

import "testing"

func stickerBytes(attr string) []byte {
	return []byte(`<x:xmpmeta><rdf:Description ` + attr + ` other="1"></x:xmpmeta>`)
}

func TestDecodeStickerEffect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want StickerEffect
	}{
		{
			name: "no marker",
			data: []byte("plain image bytes with no metadata"),
			want: StickerEffect{Kind: StickerNormal},
		},
		{
			name: "unterminated marker",
			data: []byte(`junk stickerEffect:type="comic`),
			want: StickerEffect{Kind: StickerOther, Name: "Unknown"},
		},
		{
			name: "outline",
			data: stickerBytes(`stickerEffect:type="stroke"/>`),
			want: StickerEffect{Kind: StickerOutline},
		},
		{
			name: "comic",
			data: stickerBytes(`stickerEffect:type="comic"/>`),
			want: StickerEffect{Kind: StickerComic},
		},
		{
			name: "puffy",
			data: stickerBytes(`stickerEffect:type="puffy"/>`),
			want: StickerEffect{Kind: StickerPuffy},
		},
		{
			name: "shiny",
			data: stickerBytes(`stickerEffect:type="iridescent"/>`),
			want: StickerEffect{Kind: StickerShiny},
		},
		{
			name: "unrecognized name",
			data: stickerBytes(`stickerEffect:type="sparkle"/>`),
			want: StickerEffect{Kind: StickerOther, Name: "sparkle"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeStickerEffect(tt.data); got != tt.want {
				t.Errorf("DecodeStickerEffect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStickerEffectString(t *testing.T) {
	if got := (StickerEffect{Kind: StickerShiny}).String(); got != "Shiny" {
		t.Errorf("String() = %q", got)
	}
	if got := (StickerEffect{Kind: StickerOther, Name: "sparkle"}).String(); got != "sparkle" {
		t.Errorf("String() = %q", got)
	}
	if got := (StickerEffect{}).String(); got != "Normal" {
		t.Errorf("String() = %q", got)
	}
}
