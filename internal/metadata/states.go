package metadata

// usStates is used when the catalog does not list states.
var usStates = []USState{
	{Name: "ALABAMA", Abbreviation: "AL", FIPS: "01"},
	{Name: "ALASKA", Abbreviation: "AK", FIPS: "02"},
	{Name: "AMERICAN SAMOA", Abbreviation: "AS", FIPS: "60"},
	{Name: "ARIZONA", Abbreviation: "AZ", FIPS: "04"},
	{Name: "ARKANSAS", Abbreviation: "AR", FIPS: "05"},
	{Name: "CALIFORNIA", Abbreviation: "CA", FIPS: "06"},
	{Name: "COLORADO", Abbreviation: "CO", FIPS: "08"},
	{Name: "CONNECTICUT", Abbreviation: "CT", FIPS: "09"},
	{Name: "DELAWARE", Abbreviation: "DE", FIPS: "10"},
	{Name: "DISTRICT OF COLUMBIA", Abbreviation: "DC", FIPS: "11"},
	{Name: "FEDERATED STATES OF MICRONESIA", Abbreviation: "FM", FIPS: "64"},
	{Name: "FLORIDA", Abbreviation: "FL", FIPS: "12"},
	{Name: "GEORGIA", Abbreviation: "GA", FIPS: "13"},
	{Name: "GUAM", Abbreviation: "GU", FIPS: "66"},
	{Name: "HAWAII", Abbreviation: "HI", FIPS: "15"},
	{Name: "IDAHO", Abbreviation: "ID", FIPS: "16"},
	{Name: "ILLINOIS", Abbreviation: "IL", FIPS: "17"},
	{Name: "INDIANA", Abbreviation: "IN", FIPS: "18"},
	{Name: "IOWA", Abbreviation: "IA", FIPS: "19"},
	{Name: "KANSAS", Abbreviation: "KS", FIPS: "20"},
	{Name: "KENTUCKY", Abbreviation: "KY", FIPS: "21"},
	{Name: "LOUISIANA", Abbreviation: "LA", FIPS: "22"},
	{Name: "MAINE", Abbreviation: "ME", FIPS: "23"},
	{Name: "MARSHALL ISLANDS", Abbreviation: "MH", FIPS: "68"},
	{Name: "MARYLAND", Abbreviation: "MD", FIPS: "24"},
	{Name: "MASSACHUSETTS", Abbreviation: "MA", FIPS: "25"},
	{Name: "MICHIGAN", Abbreviation: "MI", FIPS: "26"},
	{Name: "MINNESOTA", Abbreviation: "MN", FIPS: "27"},
	{Name: "MISSISSIPPI", Abbreviation: "MS", FIPS: "28"},
	{Name: "MISSOURI", Abbreviation: "MO", FIPS: "29"},
	{Name: "MONTANA", Abbreviation: "MT", FIPS: "30"},
	{Name: "NEBRASKA", Abbreviation: "NE", FIPS: "31"},
	{Name: "NEVADA", Abbreviation: "NV", FIPS: "32"},
	{Name: "NEW HAMPSHIRE", Abbreviation: "NH", FIPS: "33"},
	{Name: "NEW JERSEY", Abbreviation: "NJ", FIPS: "34"},
	{Name: "NEW MEXICO", Abbreviation: "NM", FIPS: "35"},
	{Name: "NEW YORK", Abbreviation: "NY", FIPS: "36"},
	{Name: "NORTH CAROLINA", Abbreviation: "NC", FIPS: "37"},
	{Name: "NORTH DAKOTA", Abbreviation: "ND", FIPS: "38"},
	{Name: "NORTHERN MARIANA ISLANDS", Abbreviation: "MP", FIPS: "69"},
	{Name: "OHIO", Abbreviation: "OH", FIPS: "39"},
	{Name: "OKLAHOMA", Abbreviation: "OK", FIPS: "40"},
	{Name: "OREGON", Abbreviation: "OR", FIPS: "41"},
	{Name: "PALAU", Abbreviation: "PW", FIPS: "70"},
	{Name: "PENNSYLVANIA", Abbreviation: "PA", FIPS: "42"},
	{Name: "PUERTO RICO", Abbreviation: "PR", FIPS: "72"},
	{Name: "RHODE ISLAND", Abbreviation: "RI", FIPS: "44"},
	{Name: "SOUTH CAROLINA", Abbreviation: "SC", FIPS: "45"},
	{Name: "SOUTH DAKOTA", Abbreviation: "SD", FIPS: "46"},
	{Name: "TENNESSEE", Abbreviation: "TN", FIPS: "47"},
	{Name: "TEXAS", Abbreviation: "TX", FIPS: "48"},
	{Name: "UTAH", Abbreviation: "UT", FIPS: "49"},
	{Name: "VERMONT", Abbreviation: "VT", FIPS: "50"},
	{Name: "VIRGIN ISLANDS", Abbreviation: "VI", FIPS: "78"},
	{Name: "VIRGINIA", Abbreviation: "VA", FIPS: "51"},
	{Name: "WASHINGTON", Abbreviation: "WA", FIPS: "53"},
	{Name: "WEST VIRGINIA", Abbreviation: "WV", FIPS: "54"},
	{Name: "WISCONSIN", Abbreviation: "WI", FIPS: "55"},
	{Name: "WYOMING", Abbreviation: "WY", FIPS: "56"},
}
