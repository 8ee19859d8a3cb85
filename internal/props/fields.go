package props

import (
	"fmt"
	"slices"
)

var (
	registry      = make(map[string]Descriptor)
	registryOrder []string
)

// define adds f to the field registry. Keys must be unique.
func define[T any](f Field[T]) Field[T] {
	if _, dup := registry[f.Key]; dup {
		panic(fmt.Sprintf("props: duplicate field key %q", f.Key))
	}
	registry[f.Key] = f.Descriptor
	registryOrder = append(registryOrder, f.Key)
	return f
}

// Lookup returns the descriptor registered under key.
func Lookup(key string) (Descriptor, bool) {
	d, ok := registry[key]
	if !ok {
		return Descriptor{}, false
	}
	d.Aliases = slices.Clone(d.Aliases)
	return d, true
}

// Fields returns all registered descriptors in definition order.
func Fields() []Descriptor {
	ds := make([]Descriptor, len(registryOrder))
	for i, k := range registryOrder {
		d, _ := Lookup(k)
		ds[i] = d
	}
	return ds
}

// Common identification and description.
var (
	QualifiedName        = define(StringField("qualifiedName"))
	DisplayName          = define(StringField("displayName"))
	Name                 = define(StringField("name"))
	Description          = define(StringField("description"))
	DisplayDescription   = define(StringField("displayDescription"))
	Summary              = define(StringField("summary"))
	Examples             = define(StringField("examples"))
	Abbreviation         = define(StringField("abbreviation"))
	Usage                = define(StringField("usage"))
	Language             = define(StringField("language"))
	Scope                = define(StringField("scope"))
	Identifier           = define(StringField("identifier"))
	VersionIdentifier    = define(StringField("versionIdentifier"))
	Title                = define(StringField("title"))
	Purpose              = define(StringField("purpose"))
	Category             = define(StringField("category"))
	Domain               = define(StringField("domain"))
	Owner                = define(StringField("owner"))
	OwnerTypeName        = define(StringField("ownerTypeName"))
	OwnerPropertyName    = define(StringField("ownerPropertyName"))
	Author               = define(StringField("author"))
	URL                  = define(StringField("url"))
	Mission              = define(StringField("mission"))
	Status               = define(EnumField("status"))
	UserDefinedStatus    = define(StringField("userDefinedStatus"))
	ElementStatus        = define(EnumField("elementStatus"))
	Confidence           = define(IntField("confidence"))
	Criticality          = define(EnumField("criticality"))
	ConfidentialityLevel = define(IntField("confidentialityLevel"))
	RetentionBasis       = define(EnumField("retentionBasis"))
	Notes                = define(StringField("notes"))
	Steward              = define(StringField("steward"))
	StewardTypeName      = define(StringField("stewardTypeName"))
	StewardPropertyName  = define(StringField("stewardPropertyName"))
	Source               = define(StringField("source"))
	Expression           = define(StringField("expression"))
	Labels               = define(StringListField("labels"))
	Keywords             = define(StringListField("keywords"))
	Tags                 = define(StringListField("tags"))
	Aliases              = define(StringListField("aliases"))
	AdditionalProperties = define(StringMapField("additionalProperties"))
	VendorProperties     = define(StringMapField("vendorProperties"))
	Configuration        = define(MapField("configurationProperties"))
)

// Lifecycle and timestamps.
var (
	CreateTime       = define(DateField("createTime"))
	UpdateTime       = define(DateField("updateTime"))
	SourceCreateTime = define(DateField("sourceCreateTime", "storeCreateTime"))
	SourceUpdateTime = define(DateField("sourceUpdateTime", "storeUpdateTime"))
	EffectiveFrom    = define(DateField("effectiveFrom"))
	EffectiveTo      = define(DateField("effectiveTo"))
	StartDate        = define(DateField("startDate"))
	PlannedEndDate   = define(DateField("plannedEndDate"))
	CompletionDate   = define(DateField("completionDate"))
	DueDate          = define(DateField("dueDate"))
	LastReviewTime   = define(DateField("lastReviewTime"))
	ArchiveDate      = define(DateField("archiveDate"))
	RetentionEndDate = define(DateField("retentionEndDate"))
	PublishedTime    = define(DateField("publishedTime"))
	Version          = define(LongField("version"))
	Revision         = define(LongField("revision"))
)

// Glossaries, terms and categories.
var (
	IsTaxonomy             = define(BoolField("isTaxonomy"))
	IsCanonicalVocabulary  = define(BoolField("isCanonicalVocabulary"))
	OrganizingPrinciple    = define(StringField("organizingPrinciple"))
	TermStatus             = define(EnumField("termStatus"))
	TermRelationshipStatus = define(EnumField("termRelationshipStatus"))
	TermAssignmentStatus   = define(EnumField("termAssignmentStatus"))
	ActivityType           = define(EnumField("activityType"))
	IsSpineObject          = define(BoolField("isSpineObject"))
	IsSpineAttribute       = define(BoolField("isSpineAttribute"))
	IsObjectIdentifier     = define(BoolField("isObjectIdentifier"))
	IsAbstractConcept      = define(BoolField("isAbstractConcept"))
	IsDataValue            = define(BoolField("isDataValue"))
	IsContext              = define(BoolField("isContext"))
	ContextDescription     = define(StringField("contextDescription"))
	ContextExpression      = define(StringField("expression").WithKey("contextExpression"))
	CategoryPath           = define(StringField("categoryPath"))
	IsEditingGlossary      = define(BoolField("isEditingGlossary"))
	IsStagingGlossary      = define(BoolField("isStagingGlossary"))
	ExternalGlossaryURL    = define(StringField("externalGlossaryURL", "url").WithKey("externalGlossaryURL"))
	TermRelationshipType   = define(StringField("termRelationshipType"))
	TermAssignment         = define(StringField("termAssignment"))
	GlossaryDefinition     = define(StringField("definition"))
	Antonym                = define(StringField("antonym"))
	Preferred              = define(BoolField("isPreferred"))
	IsCaseSensitive        = define(BoolField("isCaseSensitive"))
)

// Projects and collaboration.
var (
	ProjectStatus     = define(StringField("projectStatus", "status").WithKey("projectStatus"))
	Priority          = define(IntField("priority"))
	ProjectPhase      = define(StringField("projectPhase"))
	ProjectHealth     = define(StringField("projectHealth"))
	TeamRole          = define(StringField("teamRole"))
	Position          = define(StringField("position"))
	IsPublic          = define(BoolField("isPublic"))
	IsLead            = define(BoolField("isLead"))
	Text              = define(StringField("text"))
	CommentType       = define(EnumField("commentType"))
	StarRating        = define(EnumField("starRating"))
	Review            = define(StringField("review"))
	NoteLogTitle      = define(StringField("noteLogTitle"))
	ContributionCount = define(LongField("karmaPoints"))
	UserID            = define(StringField("userId"))
	DistinguishedName = define(StringField("distinguishedName"))
	FullName          = define(StringField("fullName"))
	JobTitle          = define(StringField("jobTitle"))
	EmployeeNumber    = define(StringField("employeeNumber"))
	EmployeeType      = define(StringField("employeeType"))
	Initials          = define(StringField("initials"))
	PreferredLanguage = define(StringField("preferredLanguage"))
	ContactType       = define(StringField("contactType"))
	ContactMethod     = define(EnumField("contactMethodType"))
	ContactValue      = define(StringField("contactMethodValue"))
	ContactService    = define(StringField("contactMethodService"))
)

// Schemas and data structures.
var (
	Namespace           = define(StringField("namespace"))
	EncodingStandard    = define(StringField("encodingStandard"))
	IsDeprecated        = define(BoolField("isDeprecated"))
	DataType            = define(StringField("dataType"))
	DefaultValue        = define(StringField("defaultValue"))
	FixedValue          = define(StringField("fixedValue"))
	AttributePosition   = define(IntField("position").WithKey("attributePosition"))
	MinCardinality      = define(IntField("minCardinality"))
	MaxCardinality      = define(IntField("maxCardinality"))
	AllowsDuplicates    = define(BoolField("allowsDuplicateValues"))
	OrderedValues       = define(BoolField("orderedValues"))
	MinimumLength       = define(IntField("minimumLength"))
	Length              = define(IntField("length"))
	Precision           = define(IntField("precision"))
	Significant         = define(IntField("significantDigits"))
	IsNullable          = define(BoolField("isNullable"))
	SortOrder           = define(EnumField("sortOrder"))
	AnchorGUID          = define(StringField("anchorGUID"))
	FormulaType         = define(StringField("formulaType"))
	Formula             = define(StringField("formula"))
	ValidValuesSetGUID  = define(StringField("validValueSetGUID"))
	SchemaTypeName      = define(StringField("schemaTypeName"))
	AttributeCount      = define(IntField("attributeCount"))
	NativeClass         = define(StringField("nativeClass"))
	QueryID             = define(StringField("queryId"))
	Query               = define(StringField("query"))
	QueryType           = define(StringField("queryType"))
	Symbolic            = define(StringField("preferredValue"))
	IsCaseSensitiveName = define(BoolField("isCaseSensitiveName"))
	ExternalSchemaGUID  = define(StringField("externalSchemaTypeGUID"))
	LinkedMapFromGUID   = define(StringField("mapFromElementGUID"))
	LinkedMapToGUID     = define(StringField("mapToElementGUID"))
	NamingStandardRule  = define(StringField("namingStandardRuleName"))
	StoredPosition      = define(LongField("storedPosition"))
)

// Infrastructure, assets and software capabilities. Several of these carry
// legacy property names that older repositories still emit.
var (
	NetworkAddress                = define(StringField("networkAddress", "address"))
	PostalAddress                 = define(StringField("postalAddress", "address"))
	Protocol                      = define(StringField("protocol"))
	EncryptionMethod              = define(StringField("encryptionMethod"))
	DeployedImplementationType    = define(StringField("deployedImplementationType"))
	DatabaseType                  = define(StringField("deployedImplementationType", "databaseType").WithKey("databaseType"))
	DatabaseVersion               = define(StringField("deployedImplementationVersion", "databaseVersion").WithKey("databaseVersion"))
	DatabaseInstance              = define(StringField("databaseInstance", "instance"))
	DatabaseImportedFrom          = define(StringField("databaseImportedFrom", "importedFrom"))
	CapabilityType                = define(StringField("deployedImplementationType", "capabilityType", "type").WithKey("capabilityType"))
	CapabilityVersion             = define(StringField("capabilityVersion", "version").WithKey("capabilityVersion"))
	PatchLevel                    = define(StringField("patchLevel"))
	SoftwareVersion               = define(StringField("softwareVersion"))
	Vendor                        = define(StringField("vendor"))
	Platform                      = define(StringField("platform"))
	OperatingSystem               = define(StringField("operatingSystem"))
	OperatingSystemPatchLevel     = define(StringField("operatingSystemPatchLevel"))
	CPUArchitecture               = define(StringField("cpuArchitecture"))
	DeploymentSource              = define(StringField("source", "deployedImplementationSource").WithKey("deploymentSource"))
	FileType                      = define(StringField("fileType"))
	FileName                      = define(StringField("fileName"))
	FileExtension                 = define(StringField("fileExtension"))
	PathName                      = define(StringField("pathName"))
	Format                        = define(StringField("format"))
	Encoding                      = define(StringField("encoding"))
	EncodingLanguage              = define(StringField("encodingLanguage"))
	EncodingDescription           = define(StringField("encodingDescription"))
	EncodingProperties            = define(StringMapField("encodingProperties"))
	DelimiterCharacter            = define(StringField("delimiterCharacter"))
	QuoteCharacter                = define(StringField("quoteCharacter"))
	ConnectorProviderClassName    = define(StringField("connectorProviderClassName"))
	ConnectorFrameworkName        = define(StringField("connectorFrameworkName"))
	ConnectorInterfaceLanguage    = define(StringField("connectorInterfaceLanguage"))
	SupportedAssetTypeName        = define(StringField("supportedAssetTypeName"))
	TargetTechnologySource        = define(StringField("targetTechnologySource"))
	TargetTechnologyName          = define(StringField("targetTechnologyName"))
	TargetTechnologyVersions      = define(StringListField("targetTechnologyVersions"))
	RecognizedConfigurationProps  = define(StringListField("recognizedConfigurationProperties"))
	SecuredProperties             = define(StringMapField("securedProperties"))
	ClearPassword                 = define(StringField("clearPassword"))
	EncryptedPassword             = define(StringField("encryptedPassword"))
	UserDefinedIdentifier         = define(StringField("userDefinedIdentifier"))
	StoreSize                     = define(LongField("storeSize", "size"))
	RecordCount                   = define(LongField("recordCount"))
	DeployedImplementationVersion = define(StringField("deployedImplementationVersion"))
)
