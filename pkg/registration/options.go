/* Copyright 2025 ResearchOS Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package registration

const (
	// Other is the list option that asks for free text instead
	Other = "Other"
	// India is the country whose states come from a fixed list
	India = "India"
	// TamilNadu is the default state for India
	TamilNadu = "Tamil Nadu"
)

// Countries is the list offered for the country field
var Countries = []string{
	India, "United States", "United Kingdom", "Germany", "France", "China",
	"Japan", "South Korea", "Canada", "Australia", "Singapore", "Malaysia",
	"Brazil", "Italy", "Spain", "Netherlands", "Switzerland", "Sweden",
	"Israel", "Taiwan", Other,
}

// IndiaStates is the list offered for the state field when the country is India
var IndiaStates = []string{
	TamilNadu, "Kerala", "Karnataka", "Andhra Pradesh", "Telangana",
	"Maharashtra", "Delhi", "Uttar Pradesh", "West Bengal", "Gujarat",
	"Rajasthan", "Madhya Pradesh", "Bihar", "Punjab", "Haryana",
	"Odisha", "Jharkhand", "Assam", "Goa", "Himachal Pradesh",
	"Uttarakhand", "Chhattisgarh", "Jammu and Kashmir", "Manipur",
	"Meghalaya", "Mizoram", "Nagaland", "Sikkim", "Tripura",
	"Arunachal Pradesh", "Puducherry", "Chandigarh", Other,
}

// MajorCities maps an Indian state to the cities offered for it. Cities in
// other states are entered as free text.
var MajorCities = map[string][]string{
	TamilNadu: {
		"Chennai", "Coimbatore", "Madurai", "Tiruchirappalli", "Salem",
		"Tirunelveli", "Erode", "Vellore", "Thanjavur", "Dindigul",
		"Ranipet", "Sivakasi", "Karur", "Kanchipuram", "Tiruvannamalai",
		"Tiruppur", "Thoothukudi", "Nagercoil", "Cuddalore", "Kumbakonam",
		"Rajapalayam", "Pudukkottai", "Hosur", "Ambur", "Nagapattinam", Other,
	},
}

// Roles is the list offered for the role field
var Roles = []string{
	"Undergraduate Student",
	"Master's Student",
	"PhD Scholar",
	"Postdoctoral Researcher",
	"Assistant Professor",
	"Associate Professor",
	"Professor",
	"Research Scientist",
	"Industry Researcher",
	"Lab Technician",
	"Independent Researcher",
	Other,
}

// ResearchAreas is the list offered for the research area field
var ResearchAreas = []string{
	"Batteries & Energy Storage",
	"Fuel Cells",
	"Supercapacitors",
	"Corrosion Science",
	"Electroplating & Surface Finishing",
	"Sensors & Biosensors",
	"Electrocatalysis",
	"Photoelectrochemistry",
	"Water Splitting",
	"CO₂ Reduction",
	"Organic Electrochemistry",
	"Electroanalytical Chemistry",
	"Nanomaterials",
	"Polymer Electrolytes",
	"Computational Electrochemistry",
	Other,
}
