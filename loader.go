package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ryckardox9/maxfield-app1/router"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const EARTH_RADIUS = 6371000.0 // m

type Portal struct {
	ID   int     `json:"id" bson:"id"`
	Name string  `json:"name,omitempty" bson:"name,omitempty"`
	Lat  float64 `json:"lat" bson:"lat"`
	Lon  float64 `json:"lon" bson:"lon"`
}

// Plan is the full scheduling input: the portals, the ordered link build
// list and the portal-to-portal walking distances. Dists may be omitted
// when the portals carry coordinates.
type Plan struct {
	Portals []Portal      `json:"portals" bson:"portals"`
	Links   []router.Link `json:"links" bson:"links"`
	Dists   [][]float64   `json:"dists,omitempty" bson:"dists,omitempty"`
	Agents  int           `json:"agents,omitempty" bson:"agents,omitempty"`
}

// LoadPlan reads the plan from a JSON file or a mongo collection depending
// on the path form, then fills the distance matrix if it is missing.
func LoadPlan(mongoURI string, path *Path) (*Plan, error) {
	var (
		plan *Plan
		err  error
	)
	if path.File != "" {
		plan, err = loadPlanFromFile(path.File)
	} else {
		plan, err = loadPlanFromMongo(mongoURI, path)
	}
	if err != nil {
		return nil, err
	}
	if len(plan.Dists) == 0 {
		plan.Dists, err = distsFromPortals(plan.Portals)
		if err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func loadPlanFromFile(file string) (*Plan, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", file, err)
	}
	plan := &Plan{}
	if err := json.Unmarshal(data, plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan file %s: %w", file, err)
	}
	return plan, nil
}

// mongo documents carry a class field, one document per portal, link or
// matrix row
type portalDoc struct {
	Data Portal `bson:"data"`
}

type linkDoc struct {
	Idx  int         `bson:"idx"`
	Data router.Link `bson:"data"`
}

type matrixDoc struct {
	Row  int       `bson:"row"`
	Data []float64 `bson:"data"`
}

func loadPlanFromMongo(mongoURI string, path *Path) (*Plan, error) {
	log.Infof("get plan from database %s.%s", path.GetDb(), path.GetColl())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	defer client.Disconnect(context.Background())
	coll := client.Database(path.GetDb()).Collection(path.GetColl())

	plan := &Plan{}

	portalCur, err := coll.Find(ctx, bson.M{"class": "portal"})
	if err != nil {
		return nil, err
	}
	defer portalCur.Close(ctx)
	for portalCur.Next(ctx) {
		var doc portalDoc
		if err := portalCur.Decode(&doc); err != nil {
			return nil, err
		}
		plan.Portals = append(plan.Portals, doc.Data)
	}
	if err := portalCur.Err(); err != nil {
		return nil, err
	}

	// the build order is the idx order
	linkCur, err := coll.Find(ctx, bson.M{"class": "link"},
		options.Find().SetSort(bson.D{{Key: "idx", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer linkCur.Close(ctx)
	for linkCur.Next(ctx) {
		var doc linkDoc
		if err := linkCur.Decode(&doc); err != nil {
			return nil, err
		}
		plan.Links = append(plan.Links, doc.Data)
	}
	if err := linkCur.Err(); err != nil {
		return nil, err
	}

	rowCur, err := coll.Find(ctx, bson.M{"class": "matrix"},
		options.Find().SetSort(bson.D{{Key: "row", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer rowCur.Close(ctx)
	for rowCur.Next(ctx) {
		var doc matrixDoc
		if err := rowCur.Decode(&doc); err != nil {
			return nil, err
		}
		plan.Dists = append(plan.Dists, doc.Data)
	}
	if err := rowCur.Err(); err != nil {
		return nil, err
	}
	return plan, nil
}

// distsFromPortals builds the walking distance matrix from the portal
// coordinates with the haversine great circle distance.
func distsFromPortals(portals []Portal) ([][]float64, error) {
	if len(portals) == 0 {
		return nil, fmt.Errorf("plan has neither a distance matrix nor portal coordinates")
	}
	dists := make([][]float64, len(portals))
	for i := range portals {
		dists[i] = make([]float64, len(portals))
		for j := range portals {
			if i != j {
				dists[i][j] = haversine(portals[i], portals[j])
			}
		}
	}
	return dists, nil
}

func haversine(u, v Portal) float64 {
	lat1, lon1 := u.Lat*math.Pi/180, u.Lon*math.Pi/180
	lat2, lon2 := v.Lat*math.Pi/180, v.Lon*math.Pi/180
	sinLat := math.Sin((lat2 - lat1) / 2)
	sinLon := math.Sin((lon2 - lon1) / 2)
	a := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * EARTH_RADIUS * math.Asin(math.Sqrt(a))
}
