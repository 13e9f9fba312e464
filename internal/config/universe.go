package config

// DefaultUniverse is a sample of S&P 500 constituents. It is used when no
// symbols are configured.
var DefaultUniverse = []string{
	"AAPL", "MSFT", "AMZN", "GOOGL", "GOOG", "NVDA", "BRK.B", "TSLA", "META", "UNH", "JNJ",
	"XOM", "V", "PG", "JPM", "MA", "HD", "MRK", "CVX", "LLY", "PEP", "ABBV", "KO", "AVGO",
	"COST", "MCD", "TMO", "WMT", "CSCO", "ACN", "NEE", "NKE", "PFE", "ADBE", "NFLX", "ABT",
	"CRM", "TXN", "LIN", "DIS", "PM", "VZ", "CMCSA", "DHR", "HON", "WFC", "MS", "BMY",
	"RTX", "UNP", "INTC", "MDT", "IBM", "SCHW", "GS", "GE", "LMT", "AMD", "UPS", "T", "LOW",
	"AXP", "ISRG", "ORCL", "SPGI", "PLD", "AMGN", "AMT", "SYK", "ELV", "CVS", "MDLZ", "CAT",
	"ZTS", "GILD", "ADP", "BKNG", "DE", "CI", "BLK", "CB", "BA", "MMC", "C", "DUK", "TJX",
	"MO", "PYPL", "TGT", "PNC", "BDX", "SO", "USB", "VRTX", "MMM", "MU", "REGN", "AMAT",
	"ITW", "ADI", "EQIX", "CCI", "CL", "EW", "NSC", "FCX", "BSX", "APD", "CME", "ICE",
	"COP", "ADM", "MCO", "HUM", "SPG", "ADSK", "NOW", "CTVA", "GM", "TRV", "FIS", "AON",
	"SNPS", "SBUX", "KMB", "MPC", "ORLY", "MCK", "TROW", "AEP", "HCA", "MET", "CMG", "DG",
	"AIG", "PSA", "EMR", "GD", "ILMN", "D", "FDX", "STZ", "SRE", "EXC", "PSX", "ETN", "COF",
	"APTV", "ROP", "DLR", "EBAY", "YUM", "PGR", "WBA", "ROST", "KMI", "WMB", "CTAS", "NOC",
	"EOG", "WELL", "ALL", "HSY", "DOW", "PH", "MSCI", "KLAC", "PPG", "OXY", "DGX", "XEL",
	"ED", "BIIB", "FTNT", "IDXX", "SBAC", "ODFL", "NUE", "ANSS", "CDNS", "A", "DFS", "RSG",
	"FAST", "PAYC", "CSX", "RMD", "CRL", "AVB", "STT", "TEL", "KEYS", "MLM", "FTV", "ETSY",
	"HPE", "RHI", "CNP", "PXD", "ESS", "MOS", "SWK", "TDG", "LDOS", "LHX", "VTR", "TRU",
	"AAL", "HAL", "MTD", "RF", "TSN", "AES", "BF.B", "HST", "ETR", "VMC", "VRSN", "CTLT",
	"HES", "FTI", "F", "PFG", "NRG", "WRB", "NTRS", "ALB", "LNC", "ZBH", "CPRT", "UDR",
	"AKAM", "EXPE", "URI", "CFG", "TTWO", "WYNN", "IR", "NTAP", "CINF", "ZION", "NWS",
	"FMC", "CMA", "CAG", "SWKS", "CF", "HP", "LKQ", "BWA", "SYY", "TXT", "JCI", "GLW",
	"NCLH", "WY", "JWN", "ROL", "JBHT", "KMX", "HOG", "AAP", "ALK", "RL", "NDAQ", "MRO",
	"PRGO", "KSS", "HSIC", "IRM", "WU", "LUV", "COTY", "PENN", "NI", "UAL", "CZR", "MGM",
	"HBI", "DVA", "AIZ", "HII", "UHS", "HOLX", "BKR", "HAS", "LEG", "XRAY", "PNR", "HRL",
	"BBY", "DISH", "PWR", "WHR", "J", "QRVO", "FLT", "HIG", "EQR", "DRI", "LYB", "ALGN",
	"TPR", "ATO", "L", "DOV", "CBOE", "KIM", "CNC", "FRT", "CPT", "GRMN", "SEE", "NTES",
	"VFC", "LUMN", "VRSK", "CMS", "ZBRA", "MSM", "AVY", "FFIV", "JNPR", "BAX", "ULTA",
	"GWW",
}
