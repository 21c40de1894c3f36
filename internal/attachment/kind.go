package attachment

import "strings"

// MediaKind is the coarse classification renderers branch on.
type MediaKind int

const (
	KindOther MediaKind = iota
	KindImage
	KindVideo
	KindAudio
	KindText
	KindApplication
	KindSticker
)

func (k MediaKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindText:
		return "text"
	case KindApplication:
		return "application"
	case KindSticker:
		return "sticker"
	default:
		return "other"
	}
}

// Kind classifies an attachment row. MIME wins when present; the UTI is the
// fallback for rows synced without one. The sticker flag overrides both so
// sticker images get effect decoding instead of plain image treatment.
func Kind(mime, uti string, sticker bool) MediaKind {
	if sticker {
		return KindSticker
	}
	if mime == "" {
		mime = utiToMIME(uti)
	}
	switch {
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case strings.HasPrefix(mime, "video/"):
		return KindVideo
	case strings.HasPrefix(mime, "audio/"):
		return KindAudio
	case strings.HasPrefix(mime, "text/"):
		return KindText
	case strings.HasPrefix(mime, "application/"):
		return KindApplication
	default:
		return KindOther
	}
}

// utiToMIME converts an Apple Uniform Type Identifier to its MIME
// equivalent. Returns "" for types without a well-known mapping.
func utiToMIME(uti string) string {
	switch uti {
	case "public.jpeg":
		return "image/jpeg"
	case "public.png":
		return "image/png"
	case "com.compuserve.gif":
		return "image/gif"
	case "public.tiff":
		return "image/tiff"
	case "public.heic":
		return "image/heic"
	case "public.heif":
		return "image/heif"
	case "public.webp":
		return "image/webp"
	case "public.mpeg-4":
		return "video/mp4"
	case "com.apple.quicktime-movie":
		return "video/quicktime"
	case "public.mp3":
		return "audio/mpeg"
	case "public.aac-audio":
		return "audio/aac"
	case "com.apple.coreaudio-format":
		return "audio/x-caf"
	case "public.plain-text":
		return "text/plain"
	case "public.vcard":
		return "text/vcard"
	case "com.adobe.pdf":
		return "application/pdf"
	default:
		switch {
		case strings.HasPrefix(uti, "public.image"):
			return "image/*"
		case strings.HasPrefix(uti, "public.movie"):
			return "video/*"
		case strings.HasPrefix(uti, "public.audio"):
			return "audio/*"
		default:
			return ""
		}
	}
}
