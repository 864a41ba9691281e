package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/forgefit/forge/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

var ErrFoodNotFound = errors.New("food not found")

const (
	oneHour         = 60 * 60
	usdaCacheExpire = oneHour * 24
)

// nutrient ids in FoodData Central food detail payloads
var nutrientIDs = map[int]string{
	1008: "calories",
	1003: "protein_g",
	1005: "carbs_g",
	1004: "fat_g",
	1079: "fiber_g",
}

// Food is the shaped form of a FoodData Central entry, both for search
// results and single-food details.
type Food struct {
	FDCID       int      `json:"fdc_id"`
	Description string   `json:"description"`
	Brand       string   `json:"brand,omitempty"`
	ServingSize *float64 `json:"serving_size,omitempty"`
	ServingUnit string   `json:"serving_unit"`
	Calories    *int     `json:"calories,omitempty"`
	ProteinG    *float64 `json:"protein_g,omitempty"`
	CarbsG      *float64 `json:"carbs_g,omitempty"`
	FatG        *float64 `json:"fat_g,omitempty"`
	FiberG      *float64 `json:"fiber_g,omitempty"`
}

type USDAClient struct {
	cache      *freecache.Cache
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewUSDAClient(baseURL, apiKey string, httpClient *http.Client) *USDAClient {
	megabyte := 1024 * 1024
	return &USDAClient{
		cache:      freecache.NewCache(10 * megabyte),
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type searchResponse struct {
	Foods []searchFood `json:"foods"`
}

type searchFood struct {
	FDCID           int     `json:"fdcId"`
	Description     string  `json:"description"`
	BrandOwner      string  `json:"brandOwner"`
	ServingSize     *float64 `json:"servingSize"`
	ServingSizeUnit string  `json:"servingSizeUnit"`
	FoodNutrients   []struct {
		NutrientName string  `json:"nutrientName"`
		UnitName     string  `json:"unitName"`
		Value        float64 `json:"value"`
	} `json:"foodNutrients"`
}

type foodDetailsResponse struct {
	Description     string   `json:"description"`
	ServingSize     *float64 `json:"servingSize"`
	ServingSizeUnit string   `json:"servingSizeUnit"`
	FoodNutrients   []struct {
		Nutrient struct {
			ID int `json:"id"`
		} `json:"nutrient"`
		Amount float64 `json:"amount"`
	} `json:"foodNutrients"`
}

// Search queries FoodData Central and shapes the hits. Results are cached;
// a food database does not change under us within a day.
func (c *USDAClient) Search(ctx context.Context, query string, limit int) (foods []Food, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usdaClient.search")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, fmt.Sprintf("found %d foods for: %s", len(foods), query))
		}
	}()

	cacheKey := fmt.Sprintf("search::%s::%d", strings.ToLower(query), limit)
	if cachedBytes, err := c.cache.Get([]byte(cacheKey)); err == nil {
		var cached []Food
		if err = json.Unmarshal(cachedBytes, &cached); err == nil {
			log.Tracef("usda search cache hit: %s", query)
			return cached, nil
		}
		log.Errorf("failed to unmarshal cached usda search for %q: %s", query, err)
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	params.Set("pageSize", strconv.Itoa(limit))
	for _, dt := range []string{"Survey (FNDDS)", "Foundation", "SR Legacy"} {
		params.Add("dataType", dt)
	}

	var searchResp searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/foods/search?"+params.Encode(), &searchResp); err != nil {
		return nil, err
	}

	foods = make([]Food, 0, len(searchResp.Foods))
	for _, f := range searchResp.Foods {
		food := Food{
			FDCID:       f.FDCID,
			Description: f.Description,
			Brand:       f.BrandOwner,
			ServingSize: f.ServingSize,
			ServingUnit: servingUnit(f.ServingSizeUnit),
		}
		for _, n := range f.FoodNutrients {
			name := strings.ToLower(n.NutrientName)
			value := n.Value
			switch {
			case strings.Contains(name, "energy") && strings.Contains(strings.ToLower(n.UnitName), "kcal"):
				cal := int(math.Round(value))
				food.Calories = &cal
			case name == "protein":
				food.ProteinG = round1p(value)
			case strings.Contains(name, "carbohydrate"):
				food.CarbsG = round1p(value)
			case strings.Contains(name, "total lipid") || name == "fat":
				food.FatG = round1p(value)
			case strings.Contains(name, "fiber"):
				food.FiberG = round1p(value)
			}
		}
		foods = append(foods, food)
	}

	if foodsBytes, err := json.Marshal(foods); err == nil {
		if err := c.cache.Set([]byte(cacheKey), foodsBytes, usdaCacheExpire); err != nil {
			log.Errorf("failed to cache usda search for %q: %s", query, err)
		}
	}

	return foods, nil
}

// FoodDetails fetches one food by its FoodData Central id and extracts the
// tracked nutrients.
func (c *USDAClient) FoodDetails(ctx context.Context, fdcID int) (_ *Food, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usdaClient.foodDetails")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, fmt.Sprintf("found food %d", fdcID))
		}
	}()

	cacheKey := fmt.Sprintf("food::%d", fdcID)
	if cachedBytes, err := c.cache.Get([]byte(cacheKey)); err == nil {
		var cached Food
		if err = json.Unmarshal(cachedBytes, &cached); err == nil {
			log.Tracef("usda food cache hit: %d", fdcID)
			return &cached, nil
		}
		log.Errorf("failed to unmarshal cached usda food %d: %s", fdcID, err)
	}

	var detailsResp foodDetailsResponse
	err = c.getJSON(ctx, fmt.Sprintf("%s/food/%d?api_key=%s", c.baseURL, fdcID, c.apiKey), &detailsResp)
	if err != nil {
		return nil, err
	}

	food := Food{
		FDCID:       fdcID,
		Description: detailsResp.Description,
		ServingSize: detailsResp.ServingSize,
		ServingUnit: servingUnit(detailsResp.ServingSizeUnit),
	}
	for _, n := range detailsResp.FoodNutrients {
		switch nutrientIDs[n.Nutrient.ID] {
		case "calories":
			cal := int(math.Round(n.Amount))
			food.Calories = &cal
		case "protein_g":
			food.ProteinG = round1p(n.Amount)
		case "carbs_g":
			food.CarbsG = round1p(n.Amount)
		case "fat_g":
			food.FatG = round1p(n.Amount)
		case "fiber_g":
			food.FiberG = round1p(n.Amount)
		}
	}

	if foodBytes, err := json.Marshal(food); err == nil {
		if err := c.cache.Set([]byte(cacheKey), foodBytes, usdaCacheExpire); err != nil {
			log.Errorf("failed to cache usda food %d: %s", fdcID, err)
		}
	}

	return &food, nil
}

func (c *USDAClient) getJSON(ctx context.Context, reqURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrFoodNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("usda api: unexpected status %d", resp.StatusCode)
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read usda response: %w", err)
	}
	if err := json.Unmarshal(respBytes, dst); err != nil {
		return fmt.Errorf("unmarshal usda response: %w", err)
	}
	return nil
}

func servingUnit(unit string) string {
	if unit == "" {
		return "g"
	}
	return unit
}

func round1p(v float64) *float64 {
	rounded := math.Round(v*10) / 10
	return &rounded
}
