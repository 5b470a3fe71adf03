package handler

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"shopcart/internal/media"
	"shopcart/internal/model"
	"shopcart/internal/service"

	"github.com/rs/zerolog"
)

const (
	// maxFormBytes bounds a multipart product form including its images.
	maxFormBytes = 64 << 20
	// maxFormMemory is how much of a form is buffered before spilling to disk.
	maxFormMemory = 16 << 20
	imagesField   = "images"
)

// MerchantHandler handles store management: products, stock, categories
// and orders.
type MerchantHandler struct {
	service service.MerchantService
	resp    *Responder
	logger  zerolog.Logger
}

// NewMerchantHandler creates a new merchant handler.
func NewMerchantHandler(service service.MerchantService, resp *Responder, logger zerolog.Logger) *MerchantHandler {
	return &MerchantHandler{
		service: service,
		resp:    resp,
		logger:  logger.With().Str("handler", "merchant").Logger(),
	}
}

// ListProducts handles GET /api/merchant/products.
func (h *MerchantHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListProducts(r.Context(), currentSession(r), productQuery(r))
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetProduct handles GET /api/merchant/products/{id}.
func (h *MerchantHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	product, err := h.service.GetProduct(r.Context(), currentSession(r), id)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/merchant/products. The body is either a
// JSON ProductInput or a multipart form with the same fields plus image
// files under "images".
func (h *MerchantHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var (
		input  model.ProductInput
		images []service.ImageUpload
	)

	if isMultipart(r) {
		form, err := parseProductForm(w, r)
		if err != nil {
			h.resp.Fail(w, r, err)
			return
		}
		defer form.RemoveAll()

		fields, err := readProductFields(form)
		if err != nil {
			h.resp.Fail(w, r, err)
			return
		}
		input = model.ProductInput{
			Name:        fields.name,
			Description: fields.description,
			Price:       fields.price,
			Stock:       fields.stock,
			CategoryID:  fields.categoryID,
		}

		var closeAll func()
		images, closeAll, err = openImages(form)
		if err != nil {
			h.resp.Fail(w, r, err)
			return
		}
		defer closeAll()
	} else if err := decodeJSON(r, &input); err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), currentSession(r), input, images)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/merchant/products/{id}. Multipart forms
// may carry new image files and removeImageIds.
func (h *MerchantHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	var (
		update model.ProductUpdate
		images []service.ImageUpload
	)

	if isMultipart(r) {
		form, err := parseProductForm(w, r)
		if err != nil {
			h.resp.Fail(w, r, err)
			return
		}
		defer form.RemoveAll()

		fields, err := readProductFields(form)
		if err != nil {
			h.resp.Fail(w, r, err)
			return
		}
		update = model.ProductUpdate{
			Name:           fields.name,
			Description:    fields.description,
			Price:          fields.price,
			Stock:          fields.stock,
			CategoryID:     fields.categoryID,
			RemoveImageIDs: fields.removeImageIDs,
		}

		var closeAll func()
		images, closeAll, err = openImages(form)
		if err != nil {
			h.resp.Fail(w, r, err)
			return
		}
		defer closeAll()
	} else if err := decodeJSON(r, &update); err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), currentSession(r), id, update, images)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/merchant/products/{id}.
func (h *MerchantHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), currentSession(r), id); err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStock handles PATCH /api/merchant/products/{id}/stock.
func (h *MerchantHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	var body model.StockUpdate
	if err := decodeJSON(r, &body); err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	if err := h.service.UpdateStock(r.Context(), currentSession(r), id, body.Stock); err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCategories handles GET /api/merchant/categories.
func (h *MerchantHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context(), currentSession(r))
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// GetCategory handles GET /api/merchant/categories/{id}.
func (h *MerchantHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	category, err := h.service.GetCategory(r.Context(), currentSession(r), id)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// CreateCategory handles POST /api/merchant/categories.
func (h *MerchantHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input model.CategoryInput
	if err := decodeJSON(r, &input); err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), currentSession(r), input)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// UpdateCategory handles PUT /api/merchant/categories/{id}.
func (h *MerchantHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	var input model.CategoryInput
	if err := decodeJSON(r, &input); err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), currentSession(r), id, input)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/merchant/categories/{id}.
func (h *MerchantHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	if err := h.service.DeleteCategory(r.Context(), currentSession(r), id); err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListOrders handles GET /api/merchant/orders.
func (h *MerchantHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := model.OrderQuery{
		Page:           queryInt(r, "page"),
		Limit:          queryInt(r, "limit"),
		OrderBy:        q.Get("orderBy"),
		OrderDirection: q.Get("orderDirection"),
		Status:         model.OrderStatus(strings.ToUpper(q.Get("status"))),
		Period:         q.Get("period"),
	}

	page, err := h.service.ListOrders(r.Context(), currentSession(r), query)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetOrder handles GET /api/merchant/orders/{id}.
func (h *MerchantHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	order, err := h.service.GetOrder(r.Context(), currentSession(r), id)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// UpdateOrderStatus handles PATCH /api/merchant/orders/{id}/status.
func (h *MerchantHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	var body model.StatusUpdate
	if err := decodeJSON(r, &body); err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), currentSession(r), id, body.Status)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// SoftDeleteOrder handles DELETE /api/merchant/orders/{id}.
func (h *MerchantHandler) SoftDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	if err := h.service.SoftDeleteOrder(r.Context(), currentSession(r), id); err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RestoreOrder handles POST /api/merchant/orders/{id}/restore.
func (h *MerchantHandler) RestoreOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	if err := h.service.RestoreOrder(r.Context(), currentSession(r), id); err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func parseProductForm(w http.ResponseWriter, r *http.Request) (*multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, model.ErrImageTooLarge
		}
		return nil, model.NewDomainError(model.ErrCodeValidation, "Malformed product form")
	}
	return r.MultipartForm, nil
}

type productFields struct {
	name           string
	description    string
	price          float64
	stock          int
	categoryID     int
	removeImageIDs []int
}

// readProductFields parses the text fields of a product form. Unparseable
// numbers are reported together as a validation error.
func readProductFields(form *multipart.Form) (productFields, error) {
	get := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	var (
		fields  productFields
		details []model.FieldDetail
		err     error
	)
	fields.name = get("name")
	fields.description = get("description")

	if raw := get("price"); raw != "" {
		if fields.price, err = strconv.ParseFloat(raw, 64); err != nil {
			details = append(details, model.FieldDetail{Field: "price", Message: "Must be a number"})
		}
	}
	if raw := get("stock"); raw != "" {
		if fields.stock, err = strconv.Atoi(raw); err != nil {
			details = append(details, model.FieldDetail{Field: "stock", Message: "Must be a whole number"})
		}
	}
	if raw := get("categoryId"); raw != "" {
		if fields.categoryID, err = strconv.Atoi(raw); err != nil {
			details = append(details, model.FieldDetail{Field: "categoryId", Message: "Must be a whole number"})
		}
	}

	// removeImageIds may repeat or be comma separated.
	for _, value := range form.Value["removeImageIds"] {
		for _, raw := range strings.Split(value, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			id, err := strconv.Atoi(raw)
			if err != nil {
				details = append(details, model.FieldDetail{Field: "removeImageIds", Message: "Must be a list of ids"})
				break
			}
			fields.removeImageIDs = append(fields.removeImageIDs, id)
		}
	}

	if len(details) > 0 {
		return productFields{}, &model.ValidationError{Details: details}
	}
	return fields, nil
}

// openImages opens every uploaded image file. The returned func closes them.
func openImages(form *multipart.Form) ([]service.ImageUpload, func(), error) {
	headers := form.File[imagesField]
	uploads := make([]service.ImageUpload, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for _, fh := range headers {
		if fh.Size > media.MaxImageBytes {
			closeAll()
			return nil, nil, model.ErrImageTooLarge
		}
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, model.NewDomainError(model.ErrCodeValidation, "Unreadable image "+fh.Filename)
		}
		files = append(files, f)
		uploads = append(uploads, service.ImageUpload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}
	return uploads, closeAll, nil
}
