package domain

// SampleProducts returns the bundled catalog served when the product store
// cannot be read. Each call returns fresh records.
func SampleProducts() []Record {
	return []Record{
		{
			"id":       "1",
			"name":     "Gold Necklace",
			"price":    float64(50000),
			"category": "Necklace",
			"image":    "https://images.unsplash.com/photo-1599643478518-a784e5dc4c8f?w=400",
		},
		{
			"id":       "2",
			"name":     "Diamond Ring",
			"price":    float64(75000),
			"category": "Ring",
			"image":    "https://images.unsplash.com/photo-1605100804763-247f67b3557e?w=400",
		},
		{
			"id":       "3",
			"name":     "Pearl Earrings",
			"price":    float64(15000),
			"category": "Earrings",
			"image":    "https://images.unsplash.com/photo-1535632066927-ab7c9ab60908?w=400",
		},
	}
}
