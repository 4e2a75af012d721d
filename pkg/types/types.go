/*
Package types defines the wire and storage schemas for every cached value
kind: the closed set of payloads the cache engine can hold, plus the
CachedEntry envelope each payload is stored under.

These shapes mirror the mod registry and meta-service responses verbatim
(see SPEC_FULL.md §6) — they are not application domain models, they are
the cache's storage contract, so fields are kept close to the upstream JSON
rather than reshaped for convenience.
*/
package types

import "time"

// Kind discriminates the closed set of cacheable value kinds. It is the
// data_type discriminator stored alongside every row.
type Kind string

const (
	KindProject           Kind = "project"
	KindVersion           Kind = "version"
	KindUser              Kind = "user"
	KindTeam              Kind = "team"
	KindOrganization      Kind = "organization"
	KindFile              Kind = "file"
	KindLoaderManifest    Kind = "loader_manifest"
	KindMinecraftManifest Kind = "minecraft_manifest"
	KindCategories        Kind = "categories"
	KindReportTypes       Kind = "report_types"
	KindLoaders           Kind = "loaders"
	KindGameVersions      Kind = "game_versions"
	KindDonationPlatforms Kind = "donation_platforms"
	KindFileHash          Kind = "file_hash"
	KindFileUpdate        Kind = "file_update"
)

// SingletonKey is the fixed id used by kinds that have exactly one row:
// Team (when empty), MinecraftManifest, Categories, ReportTypes, Loaders,
// GameVersions, and DonationPlatforms.
const SingletonKey = "0"

// DefaultTTL returns the expiry window for a kind. File and
// FileHash get the long (30 day) window; everything else gets the default
// (30 minute) window. Callers pass the configured durations so a single
// process can tune them without touching this package.
func (k Kind) DefaultTTL(shortTTL, longTTL time.Duration) time.Duration {
	switch k {
	case KindFile, KindFileHash:
		return longTTL
	default:
		return shortTTL
	}
}

// Behavior selects the cache policy applied to a get/get_many call.
type Behavior int

const (
	// StaleWhileRevalidateSkipOffline returns fresh or stale data
	// immediately; a background refresh is scheduled for stale data, and
	// network errors while fetching missing keys are swallowed (treated as
	// "nothing new yet"). This is the default.
	StaleWhileRevalidateSkipOffline Behavior = iota

	// StaleWhileRevalidate returns fresh or stale data immediately and
	// schedules a background refresh for stale data, but propagates
	// network errors encountered while fetching missing keys.
	StaleWhileRevalidate

	// MustRevalidate treats expired entries as absent and fetches them
	// synchronously; errors always propagate.
	MustRevalidate

	// Bypass never reads the store; every key is fetched and the result is
	// upserted and returned.
	Bypass
)

// String renders a Behavior for logging.
func (b Behavior) String() string {
	switch b {
	case StaleWhileRevalidateSkipOffline:
		return "swr_skip_offline"
	case StaleWhileRevalidate:
		return "swr"
	case MustRevalidate:
		return "must_revalidate"
	case Bypass:
		return "bypass"
	default:
		return "unknown"
	}
}

// Value is implemented by every payload kind this package defines. It is
// the closed union CachedEntry.Data holds; a nil Value records a
// tombstone rather than an unset field.
type Value interface {
	// Kind identifies which concrete payload type this value holds.
	Kind() Kind
}

// CachedEntry is the unit of storage: one row of the cache table. Data is
// nil for a tombstone (a recorded, not-yet-expired negative result).
type CachedEntry struct {
	ID       string
	DataType Kind
	Alias    *string
	Data     Value
	Expires  int64 // unix seconds, UTC
}

// IsTombstone reports whether this entry records a known absence.
func (e *CachedEntry) IsTombstone() bool {
	return e.Data == nil
}

// IsExpired reports whether this entry's expiry has passed as of now.
func (e *CachedEntry) IsExpired(now time.Time) bool {
	return e.Expires <= now.Unix()
}

// ---- payload schemas -------------------------------------------------

// Project mirrors a mod registry project response.
type Project struct {
	ID                  string          `json:"id"`
	Slug                *string         `json:"slug,omitempty"`
	ProjectType         string          `json:"project_type"`
	Team                string          `json:"team"`
	Organization        *string         `json:"organization,omitempty"`
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	Body                string          `json:"body"`
	Published           time.Time       `json:"published"`
	Updated             time.Time       `json:"updated"`
	Approved            *time.Time      `json:"approved,omitempty"`
	Status              string          `json:"status"`
	License             License         `json:"license"`
	ClientSide          SideType        `json:"client_side"`
	ServerSide          SideType        `json:"server_side"`
	Downloads           uint32          `json:"downloads"`
	Followers           uint32          `json:"followers"`
	Categories          []string        `json:"categories"`
	AdditionalCategories []string       `json:"additional_categories"`
	GameVersions        []string        `json:"game_versions"`
	Loaders             []string        `json:"loaders"`
	Versions            []string        `json:"versions"`
	IconURL             *string         `json:"icon_url,omitempty"`
	IssuesURL           *string         `json:"issues_url,omitempty"`
	SourceURL           *string         `json:"source_url,omitempty"`
	WikiURL             *string         `json:"wiki_url,omitempty"`
	DiscordURL          *string         `json:"discord_url,omitempty"`
	DonationURLs        []DonationLink  `json:"donation_urls,omitempty"`
	Gallery             []GalleryItem   `json:"gallery"`
	Color               *uint32         `json:"color,omitempty"`
}

// License identifies a project's license.
type License struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	URL  *string `json:"url,omitempty"`
}

// GalleryItem is one image in a project's gallery.
type GalleryItem struct {
	URL         string    `json:"url"`
	Featured    bool      `json:"featured"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Created     time.Time `json:"created"`
	Ordering    int64     `json:"ordering"`
}

// DonationLink points at an external donation platform for a project.
type DonationLink struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// SideType describes whether a project's client/server side is required.
type SideType string

const (
	SideRequired    SideType = "required"
	SideOptional    SideType = "optional"
	SideUnsupported SideType = "unsupported"
	SideUnknown     SideType = "unknown"
)

// Version mirrors a mod registry version response.
type Version struct {
	ID             string       `json:"id"`
	ProjectID      string       `json:"project_id"`
	AuthorID       string       `json:"author_id"`
	Featured       bool         `json:"featured"`
	Name           string       `json:"name"`
	VersionNumber  string       `json:"version_number"`
	Changelog      string       `json:"changelog"`
	ChangelogURL   *string      `json:"changelog_url,omitempty"`
	DatePublished  time.Time    `json:"date_published"`
	Downloads      uint32       `json:"downloads"`
	VersionType    string       `json:"version_type"`
	Files          []VersionFile `json:"files"`
	Dependencies   []Dependency `json:"dependencies"`
	GameVersions   []string     `json:"game_versions"`
	Loaders        []string     `json:"loaders"`
}

// VersionFile is a single downloadable artifact attached to a Version.
type VersionFile struct {
	Hashes   map[string]string `json:"hashes"`
	URL      string            `json:"url"`
	Filename string            `json:"filename"`
	Primary  bool              `json:"primary"`
	Size     uint32            `json:"size"`
	FileType *FileType         `json:"file_type,omitempty"`
}

// FileType classifies an optional resource-pack-like file.
type FileType string

const (
	FileTypeRequiredResourcePack FileType = "required-resource-pack"
	FileTypeOptionalResourcePack FileType = "optional-resource-pack"
	FileTypeUnknown              FileType = "unknown"
)

// Dependency is a single dependency edge from one version to another.
type Dependency struct {
	VersionID      *string        `json:"version_id,omitempty"`
	ProjectID      *string        `json:"project_id,omitempty"`
	FileName       *string        `json:"file_name,omitempty"`
	DependencyType DependencyType `json:"dependency_type"`
}

// DependencyType classifies a Dependency edge.
type DependencyType string

const (
	DependencyRequired     DependencyType = "required"
	DependencyOptional     DependencyType = "optional"
	DependencyIncompatible DependencyType = "incompatible"
	DependencyEmbedded     DependencyType = "embedded"
)

// TeamMember is one member of a team, as returned by the teams endpoint.
type TeamMember struct {
	TeamID   string `json:"team_id"`
	User     User   `json:"user"`
	IsOwner  bool   `json:"is_owner"`
	Role     string `json:"role"`
	Ordering int64  `json:"ordering"`
}

// User mirrors a mod registry user response.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	Created   time.Time `json:"created"`
	Role      string    `json:"role"`
}

// Organization mirrors a mod registry organization response.
type Organization struct {
	ID          string       `json:"id"`
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	TeamID      string       `json:"team_id"`
	Description string       `json:"description"`
	IconURL     *string      `json:"icon_url,omitempty"`
	Color       *uint32      `json:"color,omitempty"`
	Members     []TeamMember `json:"members"`
}

// FileMetadata is the per-hash payload of a File cache entry: either a
// match against a known version, or an explicit miss.
type FileMetadata struct {
	Type      string  `json:"type"` // "modrinth" | "unknown"
	ProjectID *string `json:"project_id,omitempty"`
	VersionID *string `json:"version_id,omitempty"`
}

const (
	FileMetadataTypeMatch   = "modrinth"
	FileMetadataTypeUnknown = "unknown"
)

// CachedFile is the File kind's payload: a content hash and what it
// resolved to (or didn't).
type CachedFile struct {
	Hash     string       `json:"hash"`
	Metadata FileMetadata `json:"metadata"`
}

// CachedLoaderManifest is the LoaderManifest kind's payload.
type CachedLoaderManifest struct {
	Loader   string   `json:"loader"`
	Manifest Manifest `json:"manifest"`
}

// Manifest is a single mod-loader's version manifest, as served by the
// meta service at {META}/{loader}/v0/manifest.json.
type Manifest struct {
	GameVersions []ManifestGameVersion `json:"game_versions"`
}

// ManifestGameVersion lists the loader versions available for one game
// version.
type ManifestGameVersion struct {
	ID      string            `json:"id"`
	Stable  bool              `json:"stable"`
	Loaders []ManifestLoaderVersion `json:"loaders"`
}

// ManifestLoaderVersion is a single installable loader build.
type ManifestLoaderVersion struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Stable bool   `json:"stable"`
}

// MinecraftManifest is the singleton MinecraftManifest kind's payload, as
// served by the meta service's minecraft manifest endpoint.
type MinecraftManifest struct {
	Versions []MinecraftVersionEntry `json:"versions"`
	Latest   MinecraftLatest         `json:"latest"`
}

// MinecraftVersionEntry is one entry of the Minecraft version manifest.
type MinecraftVersionEntry struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	URL         string    `json:"url"`
	Time        time.Time `json:"time"`
	ReleaseTime time.Time `json:"releaseTime"`
}

// MinecraftLatest names the current release and snapshot versions.
type MinecraftLatest struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

// Category is a single taggable project category.
type Category struct {
	Name        string `json:"name"`
	ProjectType string `json:"project_type"`
	Header      string `json:"header"`
	Icon        string `json:"icon"`
}

// Loader is a single taggable mod loader.
type Loader struct {
	Name                   string   `json:"name"`
	Icon                   string   `json:"icon"`
	SupportedProjectTypes  []string `json:"supported_project_types"`
}

// DonationPlatform is a single taggable donation platform.
type DonationPlatform struct {
	Short string `json:"short"`
	Name  string `json:"name"`
}

// GameVersion is a single taggable Minecraft game version.
type GameVersion struct {
	Version     string `json:"version"`
	VersionType string `json:"version_type"`
	Date        string `json:"date"`
	Major       bool   `json:"major"`
}

// CachedFileHash is the FileHash kind's payload: the result of hashing a
// local file under the profiles directory.
type CachedFileHash struct {
	Path     string `json:"path"`
	FileName string `json:"file_name"`
	Size     uint64 `json:"size"`
	Hash     string `json:"hash"`
}

// CachedFileUpdate is the FileUpdate kind's payload: whether a given file
// hash has an available update for a (loader, game_version) pair.
type CachedFileUpdate struct {
	Hash            string  `json:"hash"`
	GameVersion     string  `json:"game_version"`
	Loader          string  `json:"loader"`
	UpdateVersionID *string `json:"update_version_id,omitempty"`
}

// TeamMembers is the Team kind's payload: every member of one team. A
// team with no members is stored as an empty slice under the singleton
// key, never as a tombstone.
type TeamMembers []TeamMember

// Categories is the Categories kind's singleton payload.
type Categories []Category

// ReportTypes is the ReportTypes kind's singleton payload.
type ReportTypes []string

// Loaders is the Loaders kind's singleton payload.
type Loaders []Loader

// GameVersions is the GameVersions kind's singleton payload.
type GameVersions []GameVersion

// DonationPlatforms is the DonationPlatforms kind's singleton payload.
type DonationPlatforms []DonationPlatform

// ---- Value implementations --------------------------------------------

func (Project) Kind() Kind               { return KindProject }
func (Version) Kind() Kind               { return KindVersion }
func (User) Kind() Kind                  { return KindUser }
func (TeamMembers) Kind() Kind           { return KindTeam }
func (Organization) Kind() Kind          { return KindOrganization }
func (CachedFile) Kind() Kind            { return KindFile }
func (CachedLoaderManifest) Kind() Kind  { return KindLoaderManifest }
func (MinecraftManifest) Kind() Kind     { return KindMinecraftManifest }
func (Categories) Kind() Kind            { return KindCategories }
func (ReportTypes) Kind() Kind           { return KindReportTypes }
func (Loaders) Kind() Kind               { return KindLoaders }
func (GameVersions) Kind() Kind          { return KindGameVersions }
func (DonationPlatforms) Kind() Kind     { return KindDonationPlatforms }
func (CachedFileHash) Kind() Kind        { return KindFileHash }
func (CachedFileUpdate) Kind() Kind      { return KindFileUpdate }
