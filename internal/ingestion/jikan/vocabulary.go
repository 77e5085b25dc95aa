package jikan

import "strings"

// ============================================
// MEDIA TYPES
// ============================================

// Local title type ids.
const (
	TypeTV         uint = 1
	TypeManga      uint = 2
	TypeMovie      uint = 3
	TypeOVA        uint = 4
	TypeManhwa     uint = 5
	TypeManhua     uint = 6
	TypeONA        uint = 7
	TypeLightNovel uint = 8
	TypeSpecial    uint = 9
	TypeOneShot    uint = 10
	TypeDoujinshi  uint = 11
	TypeNovel      uint = 12
)

// mediaTypes maps the catalog's lower-cased type token to a local type id.
var mediaTypes = map[string]uint{
	"tv":          TypeTV,
	"manga":       TypeManga,
	"movie":       TypeMovie,
	"ova":         TypeOVA,
	"manhwa":      TypeManhwa,
	"manhua":      TypeManhua,
	"ona":         TypeONA,
	"light novel": TypeLightNovel,
	"special":     TypeSpecial,
	"one-shot":    TypeOneShot,
	"doujinshi":   TypeDoujinshi,
	"novel":       TypeNovel,
}

// TypeSeed describes one row of the title_types table.
type TypeSeed struct {
	ID    uint
	Name  string
	Slug  string
	Token string // catalog type token
}

// TypeSeeds lists the local title types and their catalog tokens.
var TypeSeeds = []TypeSeed{
	{TypeTV, "TV", "tv", "tv"},
	{TypeManga, "Manga", "manga", "manga"},
	{TypeMovie, "Película", "pelicula", "movie"},
	{TypeOVA, "OVA", "ova", "ova"},
	{TypeManhwa, "Manhwa", "manhwa", "manhwa"},
	{TypeManhua, "Manhua", "manhua", "manhua"},
	{TypeONA, "ONA", "ona", "ona"},
	{TypeLightNovel, "Novela Ligera", "novela-ligera", "light novel"},
	{TypeSpecial, "Especial", "especial", "special"},
	{TypeOneShot, "One Shot", "one-shot", "one-shot"},
	{TypeDoujinshi, "Doujinshi", "doujinshi", "doujinshi"},
	{TypeNovel, "Novela", "novela", "novel"},
}

// slugToToken is the inverse table: local type slug -> catalog type token.
var slugToToken = func() map[string]string {
	m := make(map[string]string, len(TypeSeeds))
	for _, s := range TypeSeeds {
		m[s.Slug] = s.Token
	}
	return m
}()

// idToToken maps a local type id to its catalog type token.
var idToToken = func() map[uint]string {
	m := make(map[uint]string, len(TypeSeeds))
	for _, s := range TypeSeeds {
		m[s.ID] = s.Token
	}
	return m
}()

// mangaFamily holds the tokens served by the catalog's /manga endpoint.
var mangaFamily = map[string]bool{
	"manga":       true,
	"manhwa":      true,
	"manhua":      true,
	"light novel": true,
	"one-shot":    true,
	"doujinshi":   true,
	"novel":       true,
}

// excludedTypes are catalog types never imported.
var excludedTypes = map[string]bool{
	"unknown": true,
	"music":   true,
	"cm":      true,
	"pv":      true,
	"":        true,
}

// MapMediaType translates a catalog type token to a local type id.
func MapMediaType(key string) (uint, bool) {
	id, ok := mediaTypes[normalize(key)]
	return id, ok
}

// ExternalTypeForSlug returns the catalog type token for a local type slug.
func ExternalTypeForSlug(slug string) (string, bool) {
	token, ok := slugToToken[normalize(slug)]
	return token, ok
}

// ExternalTypeForID returns the catalog type token for a local type id.
func ExternalTypeForID(id uint) (string, bool) {
	token, ok := idToToken[id]
	return token, ok
}

// IsMangaType reports whether the token belongs to the manga family.
func IsMangaType(token string) bool {
	return mangaFamily[normalize(token)]
}

// IsExcludedType reports whether a catalog type is explicitly never imported.
func IsExcludedType(token string) bool {
	return excludedTypes[normalize(token)]
}

// ============================================
// RATINGS
// ============================================

// RatingUnrated is the local id for "no rating" and the default of MapRating.
const RatingUnrated uint = 7

var ratings = map[string]uint{
	"g":                              1,
	"g - all ages":                   1,
	"pg":                             2,
	"pg - children":                  2,
	"pg-13":                          3,
	"pg-13 - teens 13 or older":      3,
	"r":                              4,
	"r - 17+ (violence & profanity)": 4,
	"r+":                             5,
	"r+ - mild nudity":               5,
	"rx":                             6,
	"rx - hentai":                    6,
}

// MapRating translates a MAL rating string to a local rating id. The full
// string or its code prefix ("pg-13" of "PG-13 - Teens 13 or older") both
// match; anything else yields RatingUnrated.
func MapRating(key string) uint {
	k := normalize(key)
	if k == "" {
		return RatingUnrated
	}
	if id, ok := ratings[k]; ok {
		return id
	}
	if code, _, found := strings.Cut(k, " - "); found {
		if id, ok := ratings[strings.TrimSpace(code)]; ok {
			return id
		}
	}
	return RatingUnrated
}

// ============================================
// STATUS
// ============================================

// Local status values.
const (
	StatusFinished = "Finalizado"
	StatusAiring   = "En emisión"
	StatusUpcoming = "Estreno"
	StatusHiatus   = "En pausa"
	StatusCanceled = "Cancelado"
)

var statuses = map[string]string{
	"finished airing":   StatusFinished,
	"currently airing":  StatusAiring,
	"not yet aired":     StatusUpcoming,
	"finished":          StatusFinished,
	"publishing":        StatusAiring,
	"not yet published": StatusUpcoming,
	"on hiatus":         StatusHiatus,
	"discontinued":      StatusCanceled,
}

// ValidStatus reports whether s is one of the local status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusFinished, StatusAiring, StatusUpcoming, StatusHiatus, StatusCanceled:
		return true
	}
	return false
}

// MapStatus translates a catalog airing/publishing state. Callers supply
// their own fallback (usually StatusFinished) when ok is false.
func MapStatus(key string) (string, bool) {
	s, ok := statuses[normalize(key)]
	return s, ok
}

// ============================================
// GENRES
// ============================================

// GenreSeed describes one row of the genres table.
type GenreSeed struct {
	ID   uint
	Name string
	Slug string
}

// KnownGenreID reports whether id is a seeded genre.
func KnownGenreID(id uint) bool {
	for _, g := range GenreSeeds {
		if g.ID == id {
			return true
		}
	}
	return false
}

// GenreSeeds lists the local genres.
var GenreSeeds = []GenreSeed{
	{1, "Acción", "accion"},
	{2, "Aventura", "aventura"},
	{3, "Vanguardia", "vanguardia"},
	{4, "Premiado", "premiado"},
	{5, "Boys Love", "boys-love"},
	{6, "Comedia", "comedia"},
	{7, "Drama", "drama"},
	{8, "Fantasía", "fantasia"},
	{9, "Girls Love", "girls-love"},
	{10, "Gastronomía", "gastronomia"},
	{11, "Terror", "terror"},
	{12, "Misterio", "misterio"},
	{13, "Romance", "romance"},
	{14, "Ciencia Ficción", "ciencia-ficcion"},
	{15, "Recuentos de la vida", "recuentos-de-la-vida"},
	{16, "Deportes", "deportes"},
	{17, "Sobrenatural", "sobrenatural"},
	{18, "Suspenso", "suspenso"},
	{19, "Ecchi", "ecchi"},
	{20, "Erótico", "erotico"},
	{21, "Hentai", "hentai"},
	{22, "Elenco adulto", "elenco-adulto"},
	{23, "Antropomórfico", "antropomorfico"},
	{24, "Chicas lindas haciendo cosas lindas", "cgdct"},
	{25, "Crianza", "crianza"},
	{26, "Deportes de combate", "deportes-de-combate"},
	{27, "Travestismo", "travestismo"},
	{28, "Delincuentes", "delincuentes"},
	{29, "Detectives", "detectives"},
	{30, "Educativo", "educativo"},
	{31, "Humor absurdo", "humor-absurdo"},
	{32, "Gore", "gore"},
	{33, "Harem", "harem"},
	{34, "Juegos de alto riesgo", "juegos-de-alto-riesgo"},
	{35, "Histórico", "historico"},
	{36, "Idols (Femenino)", "idols-femenino"},
	{37, "Idols (Masculino)", "idols-masculino"},
	{38, "Isekai", "isekai"},
	{39, "Iyashikei", "iyashikei"},
	{40, "Polígono amoroso", "poligono-amoroso"},
	{41, "Cambio de sexo", "cambio-de-sexo"},
	{42, "Mahou Shoujo", "mahou-shoujo"},
	{43, "Artes marciales", "artes-marciales"},
	{44, "Mecha", "mecha"},
	{45, "Medicina", "medicina"},
	{46, "Militar", "militar"},
	{47, "Música", "musica"},
	{48, "Mitología", "mitologia"},
	{49, "Crimen organizado", "crimen-organizado"},
	{50, "Cultura otaku", "cultura-otaku"},
	{51, "Parodia", "parodia"},
	{52, "Artes escénicas", "artes-escenicas"},
	{53, "Mascotas", "mascotas"},
	{54, "Psicológico", "psicologico"},
	{55, "Carreras", "carreras"},
	{56, "Reencarnación", "reencarnacion"},
	{57, "Harem inverso", "harem-inverso"},
	{58, "Samurái", "samurai"},
	{59, "Escolar", "escolar"},
	{60, "Farándula", "farandula"},
	{61, "Espacial", "espacial"},
	{62, "Juegos de estrategia", "juegos-de-estrategia"},
	{63, "Superpoderes", "superpoderes"},
	{64, "Supervivencia", "supervivencia"},
	{65, "Deportes en equipo", "deportes-en-equipo"},
	{66, "Viajes en el tiempo", "viajes-en-el-tiempo"},
	{67, "Fantasía urbana", "fantasia-urbana"},
	{68, "Vampiros", "vampiros"},
	{69, "Videojuegos", "videojuegos"},
	{70, "Villana", "villana"},
	{71, "Artes visuales", "artes-visuales"},
	{72, "Laboral", "laboral"},
	{73, "Josei", "josei"},
	{74, "Infantil", "infantil"},
	{75, "Seinen", "seinen"},
	{76, "Shoujo", "shoujo"},
	{77, "Shounen", "shounen"},
	{78, "Magia", "magia"},
	{79, "Demonios", "demonios"},
	{80, "Policial", "policial"},
	{81, "Juegos", "juegos"},
	{82, "Autos", "autos"},
	{83, "Thriller", "thriller"},
	{84, "Memorias", "memorias"},
	{85, "Subtexto romántico", "subtexto-romantico"},
	{86, "Amor estancado", "amor-estancado"},
}

// genres maps lower-cased catalog genre, theme and demographic names
// (current and legacy) to local genre ids.
var genres = map[string]uint{
	"action":             1,
	"adventure":          2,
	"avant garde":        3,
	"dementia":           3,
	"award winning":      4,
	"boys love":          5,
	"shounen ai":         5,
	"yaoi":               5,
	"comedy":             6,
	"drama":              7,
	"fantasy":            8,
	"girls love":         9,
	"shoujo ai":          9,
	"yuri":               9,
	"gourmet":            10,
	"horror":             11,
	"mystery":            12,
	"romance":            13,
	"sci-fi":             14,
	"sci fi":             14,
	"science fiction":    14,
	"slice of life":      15,
	"sports":             16,
	"supernatural":       17,
	"suspense":           18,
	"ecchi":              19,
	"erotica":            20,
	"hentai":             21,
	"adult cast":         22,
	"anthropomorphic":    23,
	"cgdct":              24,
	"childcare":          25,
	"combat sports":      26,
	"crossdressing":      27,
	"delinquents":        28,
	"detective":          29,
	"educational":        30,
	"gag humor":          31,
	"gore":               32,
	"harem":              33,
	"high stakes game":   34,
	"historical":         35,
	"idols (female)":     36,
	"idols (male)":       37,
	"isekai":             38,
	"iyashikei":          39,
	"love polygon":       40,
	"magical sex shift":  41,
	"gender bender":      41,
	"mahou shoujo":       42,
	"martial arts":       43,
	"mecha":              44,
	"medical":            45,
	"military":           46,
	"music":              47,
	"mythology":          48,
	"organized crime":    49,
	"otaku culture":      50,
	"parody":             51,
	"performing arts":    52,
	"pets":               53,
	"psychological":      54,
	"racing":             55,
	"cars":               82,
	"reincarnation":      56,
	"reverse harem":      57,
	"samurai":            58,
	"school":             59,
	"showbiz":            60,
	"space":              61,
	"strategy game":      62,
	"game":               81,
	"super power":        63,
	"survival":           64,
	"team sports":        65,
	"time travel":        66,
	"urban fantasy":      67,
	"vampire":            68,
	"video game":         69,
	"villainess":         70,
	"visual arts":        71,
	"workplace":          72,
	"josei":              73,
	"kids":               74,
	"seinen":             75,
	"shoujo":             76,
	"shounen":            77,
	"magic":              78,
	"demons":             79,
	"police":             80,
	"thriller":           83,
	"memoir":             84,
	"romantic subtext":   85,
	"love status quo":    86,
	"mahou-shoujo":       42,
	"slice-of-life":      15,
	"super-power":        63,
	"martial-arts":       43,
	"avant-garde":        3,
	"award-winning":      4,
	"girls-love":         9,
	"boys-love":          5,
	"idols":              36,
}

// MapGenre translates a catalog genre name to a local genre id.
func MapGenre(key string) (uint, bool) {
	id, ok := genres[normalize(key)]
	return id, ok
}

// MapGenres translates a list of genre names, dropping the unmappable ones
// and duplicates while keeping first-seen order.
func MapGenres(names []string) []uint {
	ids := make([]uint, 0, len(names))
	seen := make(map[uint]bool, len(names))
	for _, name := range names {
		id, ok := MapGenre(name)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
