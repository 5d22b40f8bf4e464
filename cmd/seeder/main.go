package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// City centres to scatter demo spots around
var cities = []Location{
	{Lat: 51.5074, Lon: -0.1278},   // London
	{Lat: 40.7128, Lon: -74.0060},  // New York
	{Lat: 48.8566, Lon: 2.3522},    // Paris
	{Lat: 52.5200, Lon: 13.4050},   // Berlin
	{Lat: 17.6868, Lon: 83.2185},   // Visakhapatnam
	{Lat: 19.0760, Lon: 72.8777},   // Mumbai
	{Lat: 1.3521, Lon: 103.8198},   // Singapore
	{Lat: 35.6762, Lon: 139.6503},  // Tokyo
	{Lat: 37.7749, Lon: -122.4194}, // San Francisco
	{Lat: -33.8688, Lon: 151.2093}, // Sydney
}

var spotNames = []string{
	"Lot A", "Lot B", "Downtown Garage", "Station Car Park", "Market Square",
	"Riverside Lot", "Airport Long Stay", "Mall Parking", "Harbour View", "Old Town Lot",
}

func jitterLocation(base Location, meters float64) Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rand.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return Location{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
}

func apiURL() string {
	if url := os.Getenv("PARKAROO_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func postJSON(path, token string, body interface{}) (map[string]interface{}, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequest(http.MethodPost, apiURL()+path, bytes.NewBuffer(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, resp.StatusCode, err
	}
	return decoded, resp.StatusCode, nil
}

// registerAccount creates a demo account and returns its token. If the
// username is taken it falls back to logging in.
func registerAccount(username, role string) (string, error) {
	body := map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "demo-password-123",
		"role":     role,
	}
	decoded, status, err := postJSON("/api/auth/register", "", body)
	if err != nil {
		return "", err
	}
	if status == http.StatusConflict {
		decoded, status, err = postJSON("/api/auth/login", "", map[string]string{
			"username": username,
			"password": "demo-password-123",
		})
		if err != nil {
			return "", err
		}
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return "", fmt.Errorf("account setup for %s failed with status %d", username, status)
	}
	token, _ := decoded["token"].(string)
	if token == "" {
		return "", fmt.Errorf("no token in response for %s", username)
	}
	return token, nil
}

func main() {
	count := 20
	if v := os.Getenv("SEED_SPOTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			count = parsed
		}
	}

	ownerToken, err := registerAccount("demo-owner", "owner")
	if err != nil {
		log.WithError(err).Fatal("Failed to set up demo owner")
	}
	if _, err := registerAccount("demo-driver", "driver"); err != nil {
		log.WithError(err).Fatal("Failed to set up demo driver")
	}

	created := []string{}
	for i := 0; i < count; i++ {
		loc := jitterLocation(cities[rand.Intn(len(cities))], 500)
		body := map[string]interface{}{
			"name":         fmt.Sprintf("%s #%d", spotNames[rand.Intn(len(spotNames))], i+1),
			"latitude":     loc.Lat,
			"longitude":    loc.Lon,
			"pricePerHour": float64(5 + rand.Intn(40)),
		}
		decoded, status, err := postJSON("/api/parking-spots", ownerToken, body)
		if err != nil || status != http.StatusCreated {
			log.WithError(err).WithField("status", status).Warn("Failed to create demo spot")
			continue
		}
		if id, ok := decoded["id"].(string); ok {
			created = append(created, id)
		}
	}
	log.WithField("count", len(created)).Info("Demo spots created")

	// Book a few so the map shows a mix of available and taken spots.
	for i, id := range created {
		if i%4 != 0 {
			continue
		}
		start := time.Now().Add(10 * time.Minute)
		end := start.Add(time.Duration(1+rand.Intn(4)) * time.Hour)
		_, status, err := postJSON("/api/book-spot", "", map[string]string{
			"parkingSpotId": id,
			"driverId":      "demo-driver",
			"startTime":     start.Format(time.RFC3339),
			"endTime":       end.Format(time.RFC3339),
		})
		if err != nil || status != http.StatusOK {
			log.WithError(err).WithFields(log.Fields{"spot_id": id, "status": status}).Warn("Failed to book demo spot")
		}
	}
	log.Info("Seeding complete")
}
