package app

import (
	"slices"
	"strings"

	"github.com/okian/facecam/internal/overlay"
)

// Locale carries every user-facing string the session produces.
type Locale struct {
	Code string

	RequestingCamera string
	WaitingCamera    string
	CameraActive     string
	CameraDenied     string
	PermissionHint   string
	ProcessingError  string
	ServerError      string
	NoFaces          string

	SelectFace        string
	NoFacesRegistered string
	ErrorLoadingFaces string
	// DeleteConfirm is a format string taking the face name.
	DeleteConfirm string

	// Unknown is the name the recognition service uses for unmatched faces.
	Unknown string
}

var locales = map[string]Locale{
	"en": {
		Code:              "en",
		RequestingCamera:  "Requesting camera access...",
		WaitingCamera:     "Waiting for camera...",
		CameraActive:      "Camera active. Detecting faces...",
		CameraDenied:      "Camera access denied!",
		PermissionHint:    "Error: Please check camera permissions",
		ProcessingError:   "Error processing frame!",
		ServerError:       "Server communication error",
		NoFaces:           "No faces detected",
		SelectFace:        "Select a face to delete",
		NoFacesRegistered: "No faces registered",
		ErrorLoadingFaces: "Error loading faces",
		DeleteConfirm:     "Are you sure you want to delete %q? This action cannot be undone.",
		Unknown:           "Unknown",
	},
	"pt": {
		Code:              "pt",
		RequestingCamera:  "Inicializando câmera...",
		WaitingCamera:     "Aguardando câmera...",
		CameraActive:      "Câmera ativa. Detectando rostos...",
		CameraDenied:      "Erro ao acessar a câmera!",
		PermissionHint:    "Erro: Verifique as permissões da câmera.",
		ProcessingError:   "Erro ao processar imagem!",
		ServerError:       "Erro na comunicação com o servidor.",
		NoFaces:           "Nenhum rosto detectado",
		SelectFace:        "Selecione uma imagem para excluir",
		NoFacesRegistered: "Nenhum rosto cadastrado",
		ErrorLoadingFaces: "Erro ao carregar rostos",
		DeleteConfirm:     "Deseja realmente excluir o rosto %q? Esta ação é irreversível.",
		Unknown:           "Desconhecido",
	},
}

// LocaleFor returns the locale for code, falling back to English.
func LocaleFor(code string) (Locale, bool) {
	l, ok := locales[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return locales["en"], false
	}
	return l, true
}

// Apply sets the locale-dependent fields of an overlay style. Every locale's
// unknown sentinel marks a face as unknown.
func (l Locale) Apply(s overlay.Style) overlay.Style {
	s.NoFaces = l.NoFaces
	s.UnknownNames = unknownNames(l)
	return s
}

// unknownNames lists l's sentinel first, then the other locales' in code order.
func unknownNames(l Locale) []string {
	names := []string{l.Unknown}
	codes := make([]string, 0, len(locales))
	for code := range locales {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		if u := locales[code].Unknown; !slices.Contains(names, u) {
			names = append(names, u)
		}
	}
	return names
}
