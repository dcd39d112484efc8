package geo

// areaCodeState maps NANP area codes to US state codes. The table is sparse
// on purpose: overlays and new codes appear faster than static data keeps
// up, and an unmapped code simply yields no state.
var areaCodeState = map[string]string{
	// Alabama
	"205": "AL", "251": "AL", "256": "AL", "334": "AL",
	// Alaska
	"907": "AK",
	// Arizona
	"480": "AZ", "520": "AZ", "602": "AZ", "623": "AZ", "928": "AZ",
	// Arkansas
	"479": "AR", "501": "AR", "870": "AR",
	// California
	"209": "CA", "213": "CA", "310": "CA", "323": "CA", "408": "CA",
	"415": "CA", "510": "CA", "530": "CA", "559": "CA", "619": "CA",
	"626": "CA", "650": "CA", "661": "CA", "707": "CA", "714": "CA",
	"760": "CA", "805": "CA", "818": "CA", "831": "CA", "858": "CA",
	"909": "CA", "916": "CA", "925": "CA", "949": "CA", "951": "CA",
	// Colorado
	"303": "CO", "719": "CO", "720": "CO", "970": "CO",
	// Connecticut
	"203": "CT", "860": "CT",
	// Delaware
	"302": "DE",
	// District of Columbia
	"202": "DC",
	// Florida
	"239": "FL", "305": "FL", "321": "FL", "352": "FL", "386": "FL",
	"407": "FL", "561": "FL", "727": "FL", "754": "FL", "772": "FL",
	"786": "FL", "813": "FL", "850": "FL", "863": "FL", "904": "FL",
	"941": "FL", "954": "FL",
	// Georgia
	"229": "GA", "404": "GA", "470": "GA", "478": "GA", "678": "GA",
	"706": "GA", "770": "GA", "912": "GA",
	// Hawaii
	"808": "HI",
	// Idaho
	"208": "ID",
	// Illinois
	"217": "IL", "309": "IL", "312": "IL", "618": "IL", "630": "IL",
	"708": "IL", "773": "IL", "815": "IL", "847": "IL",
	// Indiana
	"219": "IN", "260": "IN", "317": "IN", "574": "IN", "765": "IN", "812": "IN",
	// Iowa
	"319": "IA", "515": "IA", "563": "IA", "641": "IA", "712": "IA",
	// Kansas
	"316": "KS", "620": "KS", "785": "KS", "913": "KS",
	// Kentucky
	"270": "KY", "502": "KY", "606": "KY", "859": "KY",
	// Louisiana
	"225": "LA", "318": "LA", "337": "LA", "504": "LA", "985": "LA",
	// Maine
	"207": "ME",
	// Maryland
	"240": "MD", "301": "MD", "410": "MD", "443": "MD",
	// Massachusetts
	"339": "MA", "413": "MA", "508": "MA", "617": "MA", "781": "MA", "978": "MA",
	// Michigan
	"231": "MI", "248": "MI", "269": "MI", "313": "MI", "517": "MI",
	"586": "MI", "616": "MI", "734": "MI", "810": "MI", "906": "MI", "989": "MI",
	// Minnesota
	"218": "MN", "320": "MN", "507": "MN", "612": "MN", "651": "MN", "763": "MN", "952": "MN",
	// Mississippi
	"228": "MS", "601": "MS", "662": "MS",
	// Missouri
	"314": "MO", "417": "MO", "573": "MO", "636": "MO", "660": "MO", "816": "MO",
	// Montana
	"406": "MT",
	// Nebraska
	"308": "NE", "402": "NE",
	// Nevada
	"702": "NV", "775": "NV",
	// New Hampshire
	"603": "NH",
	// New Jersey
	"201": "NJ", "609": "NJ", "732": "NJ", "856": "NJ", "908": "NJ", "973": "NJ",
	// New Mexico
	"505": "NM", "575": "NM",
	// New York
	"212": "NY", "315": "NY", "347": "NY", "516": "NY", "518": "NY",
	"585": "NY", "607": "NY", "631": "NY", "646": "NY", "716": "NY",
	"718": "NY", "845": "NY", "914": "NY", "917": "NY",
	// North Carolina
	"252": "NC", "336": "NC", "704": "NC", "828": "NC", "910": "NC", "919": "NC", "980": "NC",
	// North Dakota
	"701": "ND",
	// Ohio
	"216": "OH", "330": "OH", "419": "OH", "440": "OH", "513": "OH",
	"614": "OH", "740": "OH", "937": "OH",
	// Oklahoma
	"405": "OK", "539": "OK", "580": "OK", "918": "OK",
	// Oregon
	"458": "OR", "503": "OR", "541": "OR", "971": "OR",
	// Pennsylvania
	"215": "PA", "267": "PA", "412": "PA", "484": "PA", "570": "PA",
	"610": "PA", "717": "PA", "724": "PA", "814": "PA", "878": "PA",
	// Rhode Island
	"401": "RI",
	// South Carolina
	"803": "SC", "843": "SC", "864": "SC",
	// South Dakota
	"605": "SD",
	// Tennessee
	"423": "TN", "615": "TN", "731": "TN", "865": "TN", "901": "TN", "931": "TN",
	// Texas
	"210": "TX", "214": "TX", "254": "TX", "281": "TX", "325": "TX",
	"361": "TX", "409": "TX", "430": "TX", "432": "TX", "469": "TX",
	"512": "TX", "682": "TX", "713": "TX", "806": "TX", "817": "TX",
	"830": "TX", "832": "TX", "903": "TX", "915": "TX", "936": "TX",
	"940": "TX", "956": "TX", "972": "TX", "979": "TX",
	// Utah
	"385": "UT", "435": "UT", "801": "UT",
	// Vermont
	"802": "VT",
	// Virginia
	"276": "VA", "434": "VA", "540": "VA", "571": "VA", "703": "VA", "757": "VA", "804": "VA",
	// Washington
	"206": "WA", "253": "WA", "360": "WA", "425": "WA", "509": "WA",
	// West Virginia
	"304": "WV", "681": "WV",
	// Wisconsin
	"262": "WI", "414": "WI", "608": "WI", "715": "WI", "920": "WI",
	// Wyoming
	"307": "WY",
}

type coords struct {
	lat float64
	lon float64
}

// stateCenter maps state codes to geographic-center coordinates, used as the
// last coordinate fallback when no zip resolution is available.
var stateCenter = map[string]coords{
	"AL": {32.8067, -86.7911},
	"AK": {61.3707, -152.4044},
	"AZ": {33.7298, -111.4312},
	"AR": {34.9697, -92.3731},
	"CA": {36.7783, -119.4179},
	"CO": {39.5501, -105.7821},
	"CT": {41.6032, -73.0877},
	"DE": {38.9108, -75.5277},
	"DC": {38.9072, -77.0369},
	"FL": {27.6648, -81.5158},
	"GA": {32.1656, -82.9001},
	"HI": {19.8968, -155.5828},
	"ID": {44.0682, -114.7420},
	"IL": {40.6331, -89.3985},
	"IN": {40.2672, -86.1349},
	"IA": {41.8780, -93.0977},
	"KS": {39.0119, -98.4842},
	"KY": {37.8393, -84.2700},
	"LA": {30.9843, -91.9623},
	"ME": {45.2538, -69.4455},
	"MD": {39.0458, -76.6413},
	"MA": {42.4072, -71.3824},
	"MI": {44.3148, -85.6024},
	"MN": {46.7296, -94.6859},
	"MS": {32.3547, -89.3985},
	"MO": {37.9643, -91.8318},
	"MT": {46.8797, -110.3626},
	"NE": {41.4925, -99.9018},
	"NV": {38.8026, -116.4194},
	"NH": {43.1939, -71.5724},
	"NJ": {40.0583, -74.4057},
	"NM": {34.5199, -105.8701},
	"NY": {43.2994, -74.2179},
	"NC": {35.7596, -79.0193},
	"ND": {47.5515, -101.0020},
	"OH": {40.4173, -82.9071},
	"OK": {35.0078, -97.0929},
	"OR": {43.8041, -120.5542},
	"PA": {41.2033, -77.1945},
	"RI": {41.5801, -71.4774},
	"SC": {33.8361, -81.1637},
	"SD": {43.9695, -99.9018},
	"TN": {35.5175, -86.5804},
	"TX": {31.9686, -99.9018},
	"UT": {39.3210, -111.0937},
	"VT": {44.5588, -72.5778},
	"VA": {37.4316, -78.6569},
	"WA": {47.7511, -120.7401},
	"WV": {38.5976, -80.4549},
	"WI": {43.7844, -88.7879},
	"WY": {43.0760, -107.2903},
}
